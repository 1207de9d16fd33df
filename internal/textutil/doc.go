// Package textutil provides pure text helpers for filename generation.
package textutil
