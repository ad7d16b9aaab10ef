/*
Package ports defines the driven ports (interfaces) for the chatdialog engine.

These interfaces decouple the dialog core from external implementations, allowing
the engine to work with various storage backends, chat transports and lock managers.

# Key Interfaces

  - Storage: persists Stacks and Contexts between events (memory, redis, sql).
  - Transport: delivers rendered screens to the chat channel.
  - DistributedLocker: optional serialization of events for one conversation across replicas.
*/
package ports
