package domain

import (
	"sync"
)

// Viewer holds the account number of the currently authenticated user.
//
// Until the first identity + profile resolution completes it is unresolved,
// and it returns to that state on logout.
type Viewer struct {
	lock    sync.RWMutex
	user    string
	account string
}

func NewViewer(user string) *Viewer {
	return &Viewer{user: user}
}

// User is the identity (user name) the viewer was created for.
func (v *Viewer) User() string {
	v.lock.RLock()
	defer v.lock.RUnlock()
	return v.user
}

// Account returns the resolved account number, or "" while unresolved.
func (v *Viewer) Account() string {
	v.lock.RLock()
	defer v.lock.RUnlock()
	return v.account
}

func (v *Viewer) Resolved() bool {
	return v.Account() != ""
}

// Resolve records the viewer's account number.
func (v *Viewer) Resolve(account string) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.account = account
}

// Clear forgets both the identity and the account (logout).
func (v *Viewer) Clear() {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.user = ""
	v.account = ""
}
