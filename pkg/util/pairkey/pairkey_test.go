package pairkey

import "testing"

func TestBuildIsOrderInsensitive(t *testing.T) {
	k1 := Build("U100", "U200")
	k2 := Build("U200", "U100")
	if k1 != k2 {
		t.Fatalf("同一对用户应生成同一个 pairKey：%s != %s", k1, k2)
	}
	if k1 != "U100:U200" {
		t.Fatalf("pairKey 应是排序后拼接的结果，got %s", k1)
	}
}

func TestSplit(t *testing.T) {
	u1, u2, ok := Split("U100:U200")
	if !ok || u1 != "U100" || u2 != "U200" {
		t.Fatalf("Split 失败：%s %s %v", u1, u2, ok)
	}
	if _, _, ok := Split("not-a-pair-key"); ok {
		t.Fatal("非法 pairKey 不应解析成功")
	}
}

func TestOther(t *testing.T) {
	key := Build("U100", "U200")
	if other, ok := Other(key, "U100"); !ok || other != "U200" {
		t.Fatalf("Other(U100) = %s, %v", other, ok)
	}
	if other, ok := Other(key, "U200"); !ok || other != "U100" {
		t.Fatalf("Other(U200) = %s, %v", other, ok)
	}
	if _, ok := Other(key, "U999"); ok {
		t.Fatal("不在 pairKey 里的用户不应解析出对端")
	}
}
