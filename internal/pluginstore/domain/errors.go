package domain

import "errors"

var (
	// ErrNotFound 조건에 맞는 레코드 없음
	ErrNotFound = errors.New("plugin record not found")

	// ErrUsage 포인트 전용 연산을 플러그인에 (또는 반대로) 호출한 경우. 재시도 대상 아님
	ErrUsage = errors.New("invalid plugin usage")

	// ErrUnresolvable 저장된 import string 에 대응하는 팩토리가 없음
	ErrUnresolvable = errors.New("plugin cannot be resolved")

	// ErrInvalidInput 관리자 요청 값 오류
	ErrInvalidInput = errors.New("invalid input")
)
