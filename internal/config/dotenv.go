package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv .env.local, .env 순서로 읽는다 (이미 설정된 환경변수는 덮어쓰지 않음).
// 실제로 읽은 파일 목록을 반환한다.
func LoadDotEnv(dir string) []string {
	var loaded []string
	for _, name := range []string{".env.local", ".env"} {
		f := name
		if dir != "" {
			f = dir + string(os.PathSeparator) + name
		}
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
