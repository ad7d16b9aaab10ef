/*
Package domain contains the core models of the dialog engine.

It defines the per-conversation navigation state (Stack, Intent, Context), the
inbound events routed to the engine and the outgoing screen description handed to
the transport. This package is kept pure and free of I/O so that storage and
transport adapters can be swapped freely.

# Key Entities

  - Stack: ordered, bounded history of intents for one conversation (top = active).
  - Intent: identity of one running dialog instance.
  - Context: mutable per-intent data (current window state, dialog data, widget data).
  - NewMessage / OldMessage: the rendered screen and the remembered last screen.
  - Event: MessageEvent, CallbackEvent or UpdateEvent delivered by the host.
*/
package domain
