package core

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

var registry = struct {
	sync.RWMutex
	byID map[ModuleID]ModuleInfo
}{byID: make(map[ModuleID]ModuleInfo)}

// RegisterModule registers a module by instantiating it to read its
// ModuleInfo. It panics on an empty ID, a nil New function, or a duplicate
// registration. Intended to be called from init() functions.
func RegisterModule(instance Module) {
	info := instance.ModuleInfo()
	if info.ID == "" {
		panic("module ID must not be empty")
	}
	if info.New == nil {
		panic(fmt.Sprintf("module %s: New function must not be nil", info.ID))
	}

	registry.Lock()
	defer registry.Unlock()

	if _, exists := registry.byID[info.ID]; exists {
		panic(fmt.Sprintf("module already registered: %s", info.ID))
	}
	registry.byID[info.ID] = info
}

// GetModule returns the ModuleInfo for the given ID, or false if not found.
func GetModule(id string) (ModuleInfo, bool) {
	registry.RLock()
	defer registry.RUnlock()
	info, ok := registry.byID[ModuleID(id)]
	return info, ok
}

// GetModules returns all registered modules sorted by ID.
func GetModules() []ModuleInfo {
	registry.RLock()
	defer registry.RUnlock()
	return sortedInfos(func(ModuleID) bool { return true })
}

// GetModulesByNamespace returns all modules in the given namespace,
// sorted by ID (e.g. "notify" matches "notify.telegram").
func GetModulesByNamespace(namespace string) []ModuleInfo {
	registry.RLock()
	defer registry.RUnlock()
	return sortedInfos(func(id ModuleID) bool { return id.Namespace() == namespace })
}

// sortedInfos collects matching modules in ID order. Callers hold the
// registry lock.
func sortedInfos(match func(ModuleID) bool) []ModuleInfo {
	var result []ModuleInfo
	for id, info := range registry.byID {
		if match(id) {
			result = append(result, info)
		}
	}
	slices.SortFunc(result, func(a, b ModuleInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result
}

// resetRegistry clears the registry. Only for testing.
func resetRegistry() {
	registry.Lock()
	defer registry.Unlock()
	registry.byID = make(map[ModuleID]ModuleInfo)
}
