package replication

import "errors"

// Fanout 把同一条消息发布到多个通道
// 例如监听服务器同时服务进程内观察端（LocalHub）和网络观察端（Server）
type Fanout []Publisher

// Publish 发布到所有通道，返回所有失败的合并错误
// 一个通道失败不影响其他通道
func (f Fanout) Publish(env Envelope) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
