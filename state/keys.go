// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

const (
	Read     Permissions = 1
	Allocate             = 1<<1 | Read
	Write                = 1<<2 | Read

	None Permissions = 0
	All              = Read | Allocate | Write
)

// Keys maps every key a transaction declared to what it may do with it.
type Keys map[string]Permissions

type Permissions byte

// Add unions [permission] into whatever [name] already holds, so a key
// listed twice keeps the widest access.
func (k Keys) Add(name string, permission Permissions) {
	k[name] |= permission
}

// Has returns true if [p] has all the permissions contained in [require].
func (p Permissions) Has(require Permissions) bool {
	return require&^p == 0
}
