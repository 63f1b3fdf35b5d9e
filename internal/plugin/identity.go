package plugin

import (
	"reflect"
	"strings"
)

// IdentityOf 타입의 전역 고유 식별 문자열 ("<패키지 경로>.<타입 이름>")
// DB 레코드와 선언을 잇는 키로 사용되므로 재시작 후에도 동일해야 한다.
// 포인터와 값은 같은 식별자를 갖는다.
func IdentityOf(v interface{}) string {
	if v == nil {
		return ""
	}
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// shortName 식별자의 마지막 구간 (타입 이름)
func shortName(identity string) string {
	if i := strings.LastIndex(identity, "."); i >= 0 {
		return identity[i+1:]
	}
	return identity
}
