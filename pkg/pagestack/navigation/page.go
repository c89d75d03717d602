package navigation

import "context"

// Page is the view instance displayed for one history entry. The engine never
// inspects it beyond the optional lifecycle interfaces below; rendering belongs
// to the Presenter.
type Page any

// State is the per-page dictionary a page saves when navigated away from and
// receives back when it is redisplayed. Values must survive a JSON round trip
// to outlive a session restore.
type State map[string]any

// NavigationArgs describes a committed transition as seen by one page.
type NavigationArgs struct {
	Mode      Mode
	TypeKey   TypeKey // Type of the page on the other side of the transition
	Parameter any     // Parameter of the page on the other side of the transition
	Content   Page    // Instance of the page on the other side of the transition
}

// NavigatingFromArgs is handed to the outgoing page before a transition is
// committed. Setting Cancel on the embedded CancelContext vetoes it.
type NavigatingFromArgs struct {
	*CancelContext
	Mode      Mode
	TypeKey   TypeKey // Destination type, empty for back/forward
	Parameter any     // Destination parameter, nil for back/forward
}

// NavigatingFromHandler is implemented by pages that may veto leaving.
// The hook may resolve later by taking a deferral from args.
type NavigatingFromHandler interface {
	OnNavigatingFrom(ctx context.Context, args *NavigatingFromArgs) error
}

// NavigatedFromHandler is implemented by pages that react to being left.
type NavigatedFromHandler interface {
	OnNavigatedFrom(args NavigationArgs)
}

// NavigatedToHandler is implemented by pages that react to being shown.
type NavigatedToHandler interface {
	OnNavigatedTo(args NavigationArgs)
}

// StateLoader is implemented by pages that restore saved state.
// savedState is nil for a freshly pushed entry.
type StateLoader interface {
	LoadState(parameter any, savedState State)
}

// StateSaver is implemented by pages that persist state across navigation.
// The page writes into state; the engine stores it under the page's key.
type StateSaver interface {
	SaveState(state State)
}

// Presenter displays page content. It is the renderer collaborator: the
// engine calls it exactly once per committed transition.
type Presenter interface {
	Present(content Page)
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(content Page)

func (f PresenterFunc) Present(content Page) {
	f(content)
}
