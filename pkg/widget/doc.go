/*
Package widget implements the composable rendering units of a dialog window.

Text widgets render strings, Keyboard widgets render button layouts and consume
callbacks, Media widgets render an attachment descriptor. Every widget carries an
optional visibility Predicate; invisible widgets render as empty and take no part
in the rest of the render pass.

Widget trees are immutable after construction. Per-conversation widget state
(checkbox flags, radio selections) lives in the WidgetData of the active
domain.Context and is reached through the Manager.
*/
package widget
