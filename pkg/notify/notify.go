package notify

import "context"

// Field 结构化消息中的一个字段（标题 + 值）
type Field struct {
	Title string
	Value string
}

// Message 通知消息载荷
// 封闭变体：Fields 非空时发送结构化消息（Title 为消息头），否则发送纯文本 Text。
// ThreadRef 非空时在既有会话线程内回复，否则作为频道新消息发送。
type Message struct {
	Title     string
	Text      string
	Fields    []Field
	ThreadRef string
}

// Notifier 通知网关接口
//
// 投递语义为 best-effort：实现不得向调用方返回错误——业务状态变更在调用前
// 已经提交，通知失败只记日志。返回值为外部系统的消息引用（可作为后续线程
// 回复的 ThreadRef），未投递或投递失败时返回空字符串。
type Notifier interface {
	PostMessage(ctx context.Context, msg Message) (ref string)
	Configured() bool
}
