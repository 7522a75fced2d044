package errors

import "errors"

// ErrInvalidTransition 状态机冲突：申请已处于终态（approved/rejected），不允许再变更状态
var ErrInvalidTransition = errors.New("申请状态不允许此变更")

// ErrThreadIDImmutable 线程 ID 一经写入不可修改或清除
var ErrThreadIDImmutable = errors.New("会话线程 ID 不可修改")

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
