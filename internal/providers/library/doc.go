// Package library lists the readable documents under a content root.
package library
