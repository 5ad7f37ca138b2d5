/*
Package ports defines the driven ports (interfaces) of the storefront bot.

These interfaces decouple the conversation engine from the concrete commerce backend,
state storage and messaging transport.

# Key Interfaces

  - StateStore: persists the conversation state per user.
  - Commerce: catalog, cart, customer and image operations of the backend.
  - TokenSource: hands out bearer credentials for Commerce calls.
  - ActionDispatcher: delivers outbound messages through the transport.
  - DistributedLocker: coordinates per-user processing across replicas.
*/
package ports
