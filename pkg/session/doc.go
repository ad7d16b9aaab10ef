/*
Package session implements the scoped load/mutate/save cycle around one inbound event.

A Scope loads a Stack and lazily the Contexts it references, lets the dialog runtime
mutate them, and persists every change when the scope ends, including error paths.
Events for one conversation are expected to be serialized by the host; hosts that cannot
guarantee that opt into locking with WithLocker (LocalLocker in-process, the redis
Locker across replicas).
*/
package session
