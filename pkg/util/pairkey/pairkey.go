// Package pairkey 提供单聊会话去重键的构造与解析
// pairKey 是两个用户 uuid 排序后用 ':' 拼接得到的组合键
// 无论哪一方发起会话，得到的键都相同，因此可作为单聊会话的唯一索引
package pairkey

import "strings"

// Separator pairKey 中两个 uuid 之间的分隔符
const Separator = ":"

// Build 根据两个用户 uuid 构造 pairKey
// 字典序较小的 uuid 在前，保证键与参数顺序无关
func Build(userIdA, userIdB string) string {
	if userIdA > userIdB {
		userIdA, userIdB = userIdB, userIdA
	}
	return userIdA + Separator + userIdB
}

// Split 将 pairKey 拆成两个用户 uuid
// 非法格式返回 ok=false
func Split(pairKey string) (userIdA, userIdB string, ok bool) {
	parts := strings.SplitN(pairKey, Separator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Other 返回 pairKey 中不等于 viewerId 的那个 uuid
// 用于把单聊会话解析成"对方"的用户 id
func Other(pairKey, viewerId string) (string, bool) {
	a, b, ok := Split(pairKey)
	if !ok {
		return "", false
	}
	if a == viewerId {
		return b, true
	}
	if b == viewerId {
		return a, true
	}
	return "", false
}
