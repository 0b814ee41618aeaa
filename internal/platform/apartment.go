package platform

// Initializer performs per-thread component-layer setup and returns the
// matching teardown.
type Initializer func() (teardown func(), err error)

// Apartment is a reference-counted initialization scope. Nested Enter
// calls share one initialization; only the outermost Exit tears down.
//
// An Apartment belongs to a single goroutine. Backends that need a fixed
// OS thread lock it inside their Initializer.
type Apartment struct {
	init     Initializer
	teardown func()
	depth    int
}

// NewApartment returns a scope driven by init. A nil init makes Enter and
// Exit pure bookkeeping.
func NewApartment(init Initializer) *Apartment {
	return &Apartment{init: init}
}

// Enter acquires the scope. On error the depth is unchanged and no Exit is owed.
func (a *Apartment) Enter() error {
	if a.depth == 0 && a.init != nil {
		td, err := a.init()
		if err != nil {
			return err
		}
		a.teardown = td
	}
	a.depth++
	return nil
}

// Exit releases one level. Extra calls are ignored.
func (a *Apartment) Exit() {
	if a.depth == 0 {
		return
	}
	a.depth--
	if a.depth == 0 && a.teardown != nil {
		td := a.teardown
		a.teardown = nil
		td()
	}
}

// Do runs fn inside the scope.
func (a *Apartment) Do(fn func() error) error {
	if err := a.Enter(); err != nil {
		return err
	}
	defer a.Exit()
	return fn()
}

// Depth reports the current nesting level.
func (a *Apartment) Depth() int {
	return a.depth
}
