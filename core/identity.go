package core

import "sync/atomic"

// containerCounter backs NextContainerID. The zero ID is never handed out so
// that 0 can mean "no container" in stage metadata.
var containerCounter atomic.Uint64

// ContainerID is the process-wide unique integer handle of a container
// instance. It is stable across the container's lifetime and is the only
// identity the stage recorder retains.
type ContainerID uint64

// NoContainer is the absent-container sentinel in stage metadata.
const NoContainer ContainerID = 0

// NextContainerID allocates a fresh process-wide unique container ID.
// Safe for concurrent use.
func NextContainerID() ContainerID {
	return ContainerID(containerCounter.Add(1))
}
