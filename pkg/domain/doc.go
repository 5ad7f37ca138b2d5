/*
Package domain contains the core domain models of the storefront conversation.

It defines the conversation states and their transition table, inbound events and the
selection payloads behind inline buttons, the catalog and cart entities, and the outbound
action requests the engine asks the transport to perform. The package is kept pure: no I/O,
no persistence, no transport types.

# Key Entities

  - State: the persisted step of a user's conversation (menu, product, cart, email).
  - Event: an inbound text message or button selection.
  - Selection: the typed, validated callback payload of a button.
  - ActionRequest: a side-effect (send text/photo, delete message, notice) for the host.
  - Product, Cart, Price, Credential: data exchanged with the commerce backend.
*/
package domain
