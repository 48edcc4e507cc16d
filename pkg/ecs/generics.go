package ecs

import "reflect"

// 泛型组件访问 API
//
// 与反射版本共享同一份存储，但在编译期确定组件类型，
// 调用方无需手写 reflect.TypeOf 和类型断言。
//
// 用法：
//
//	pos, ok := ecs.GetComponent[*components.PositionComponent](em, id)

// typeOf 返回类型参数 T 对应的 reflect.Type
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// AddComponent 为实体添加类型为 T 的组件
func AddComponent[T any](em *EntityManager, id EntityID, component T) {
	if compMap, exists := em.components[id]; exists {
		compMap[typeOf[T]()] = component
	}
}

// GetComponent 获取实体的 T 类型组件
func GetComponent[T any](em *EntityManager, id EntityID) (T, bool) {
	var zero T
	compMap, exists := em.components[id]
	if !exists {
		return zero, false
	}
	comp, found := compMap[typeOf[T]()]
	if !found {
		return zero, false
	}
	typed, ok := comp.(T)
	return typed, ok
}

// HasComponent 检查实体是否拥有 T 类型组件
func HasComponent[T any](em *EntityManager, id EntityID) bool {
	if compMap, exists := em.components[id]; exists {
		_, found := compMap[typeOf[T]()]
		return found
	}
	return false
}

// RemoveComponent 移除实体的 T 类型组件
func RemoveComponent[T any](em *EntityManager, id EntityID) {
	if compMap, exists := em.components[id]; exists {
		delete(compMap, typeOf[T]())
	}
}

// GetCapability 查找实体上第一个实现了接口 I 的组件
//
// 能力（capability）以接口而不是具体类型暴露：任何组件只要实现了 I，
// 其所属实体就具备该能力。一个实体上同一能力应只有一个实现者，
// 多个实现者时返回哪一个不做保证。
//
// 返回：
//   - 实现者及 true；实体不存在或不具备该能力时返回零值和 false
func GetCapability[I any](em *EntityManager, id EntityID) (I, bool) {
	var zero I
	compMap, exists := em.components[id]
	if !exists {
		return zero, false
	}
	for _, comp := range compMap {
		if capability, ok := comp.(I); ok {
			return capability, true
		}
	}
	return zero, false
}

// GetEntitiesWith1 查询拥有 T1 组件的所有实体（按ID升序）
func GetEntitiesWith1[T1 any](em *EntityManager) []EntityID {
	return em.GetEntitiesWith(typeOf[T1]())
}

// GetEntitiesWith2 查询同时拥有 T1、T2 组件的所有实体（按ID升序）
func GetEntitiesWith2[T1, T2 any](em *EntityManager) []EntityID {
	return em.GetEntitiesWith(typeOf[T1](), typeOf[T2]())
}

// GetEntitiesWith3 查询同时拥有 T1、T2、T3 组件的所有实体（按ID升序）
func GetEntitiesWith3[T1, T2, T3 any](em *EntityManager) []EntityID {
	return em.GetEntitiesWith(typeOf[T1](), typeOf[T2](), typeOf[T3]())
}
