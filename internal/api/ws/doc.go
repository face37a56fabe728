/*
Package ws serves the overlay channel between a view's host page and its
overlay controller.

The page script sends find, action, key and wheel messages; the handler
applies them to the view's current overlay and publishes the resulting
updates to every page subscribed to the view. Reloads push a reload
message through the same channel.
*/
package ws
