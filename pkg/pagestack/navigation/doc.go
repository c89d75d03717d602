// Package navigation provides a self-hosted page history: which page is on
// screen, how to get back to the previous one, and how to survive the process
// being suspended.
//
// Pages are registered by type key with a factory. The Coordinator keeps a
// Stack of descriptors with a cursor, creates each page's view lazily, asks
// the outgoing page for permission before every transition, and fires the
// page lifecycle hooks once the transition commits. A BackGuardChain sits in
// front of the Coordinator for physical back signals (hardware key, gesture,
// shortcut) so overlays and other features can swallow them first.
//
// # Basic Usage
//
//	const (
//	    PageHome    navigation.TypeKey = "home"
//	    PageDetails navigation.TypeKey = "details"
//	)
//
//	registry := navigation.NewRegistry().
//	    Register(PageHome, func(any) (navigation.Page, error) {
//	        return &homePage{}, nil
//	    }).
//	    Register(PageDetails, func(p any) (navigation.Page, error) {
//	        return &detailsPage{id: p.(int)}, nil
//	    }, navigation.WithDecoder(navigation.DecodeAs[int]()))
//
//	nav := navigation.NewCoordinator(registry, navigation.WithPresenter(renderer))
//	nav.NavigateTo(ctx, PageHome, nil)
//	nav.NavigateTo(ctx, PageDetails, 5)
//	nav.GoBack(ctx)
//
// # Guards
//
// A page implementing NavigatingFromHandler is asked before it is left. It
// vetoes by calling args.Cancel(). If the answer needs user input, the hook
// takes a deferral and completes it later; the transition waits:
//
//	func (p *editorPage) OnNavigatingFrom(ctx context.Context, args *navigation.NavigatingFromArgs) error {
//	    if !p.dirty {
//	        return nil
//	    }
//	    d := args.Defer()
//	    p.confirm("Discard changes?", func(ok bool) {
//	        args.SetCancel(!ok)
//	        d.Complete()
//	    })
//	    return nil
//	}
//
// While a transition or a back guard waits, any other request fails with ErrBusy.
//
// # Page State
//
// Pages implementing StateSaver write into a State when navigated away from;
// the state is stored under the page's depth ("Page0", "Page1", ...) and
// handed back to StateLoader.LoadState when the page is shown again. Pushing
// a new page purges the state of every depth at or above it, so a discarded
// forward branch never leaks into an unrelated page reusing the same depth.
//
// SaveSession serializes the history and all saved state into a blob;
// RestoreFromSession rebuilds it. Pages registered WithoutPersistence, and
// everything above them, are left out of the blob.
package navigation
