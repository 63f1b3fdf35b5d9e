package plugin

import (
	"sort"
	"sync"
)

// DeclareFunc 앱의 포인트/플러그인을 레지스트리에 선언하는 함수
type DeclareFunc func(r *Registry)

var (
	// 모듈 이름 -> 앱 이름 -> 선언 함수
	moduleDeclarations = make(map[string]map[string]DeclareFunc)
	moduleMu           sync.RWMutex
)

// DeclareModule 앱의 선언 함수를 모듈 이름으로 등록
// 각 앱 패키지의 init()에서 호출됨
func DeclareModule(module, app string, fn DeclareFunc) {
	moduleMu.Lock()
	defer moduleMu.Unlock()

	apps, exists := moduleDeclarations[module]
	if !exists {
		apps = make(map[string]DeclareFunc)
		moduleDeclarations[module] = apps
	}
	apps[app] = fn
}

// DeclaredApps 모듈에 선언 함수를 등록한 앱 이름 목록 (정렬됨)
func DeclaredApps(module string) []string {
	moduleMu.RLock()
	defer moduleMu.RUnlock()

	apps := make([]string, 0, len(moduleDeclarations[module]))
	for app := range moduleDeclarations[module] {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	return apps
}

// Load 모듈에 등록된 모든 앱의 선언을 적용 (레지스트리당 앱별 한 번)
// 새로 적용된 앱 수를 반환한다.
func (r *Registry) Load(module string) int {
	moduleMu.RLock()
	fns := make(map[string]DeclareFunc, len(moduleDeclarations[module]))
	for app, fn := range moduleDeclarations[module] {
		fns[app] = fn
	}
	moduleMu.RUnlock()

	applied := 0
	for _, app := range DeclaredApps(module) {
		fn, ok := fns[app]
		if !ok {
			continue
		}
		key := module + "/" + app

		r.mu.Lock()
		done := r.loaded[key]
		r.loaded[key] = true
		r.mu.Unlock()
		if done {
			continue
		}

		fn(r)
		applied++
		r.logger.Debug("Loaded %s declarations from app %s", module, app)
	}
	return applied
}
