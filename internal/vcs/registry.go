package vcs

import (
	"fmt"
	"sync"
)

// Constructor opens an existing repository rooted at repoRoot.
// Implementations register themselves with Register().
type Constructor func(repoRoot string) (VCS, error)

// Initializer creates a new repository at path with the given initial
// branch and returns a handle to it.
type Initializer func(path, branch string) (VCS, error)

// registry maps VCS types to their constructors
var (
	registryMutex sync.RWMutex
	constructors  = make(map[Type]Constructor)
	initializers  = make(map[Type]Initializer)
)

// Register registers a VCS implementation.
// This is called from init() functions in implementation packages.
//
// Example:
//
//	func init() {
//	    vcs.Register(vcs.TypeGit, openGit, initGit)
//	}
func Register(t Type, open Constructor, create Initializer) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if open == nil || create == nil {
		panic(fmt.Sprintf("vcs: Register constructor is nil for type %s", t))
	}

	if _, exists := constructors[t]; exists {
		panic(fmt.Sprintf("vcs: Register called twice for type %s", t))
	}

	constructors[t] = open
	initializers[t] = create
}

// IsRegistered returns true if an implementation is registered for the
// given type.
func IsRegistered(t Type) bool {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	_, exists := constructors[t]
	return exists
}

// RegisteredTypes returns all registered VCS types.
// Useful for testing and debugging.
func RegisteredTypes() []Type {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	types := make([]Type, 0, len(constructors))
	for t := range constructors {
		types = append(types, t)
	}
	return types
}

// Open returns a handle to the existing repository at path.
func Open(t Type, path string) (VCS, error) {
	registryMutex.RLock()
	open := constructors[t]
	registryMutex.RUnlock()

	if open == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	return open(path)
}

// InitRepo creates a new repository at path with the given initial branch
// and returns a handle to it. The directory must already exist.
func InitRepo(t Type, path, branch string) (VCS, error) {
	registryMutex.RLock()
	create := initializers[t]
	registryMutex.RUnlock()

	if create == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	return create(path, branch)
}
