package navigation_test

import (
	"context"
	"fmt"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/navigation"
)

// Page identifiers - use typed constants for compile-time safety
const (
	PageGameList   navigation.TypeKey = "game_list"
	PageGameDetail navigation.TypeKey = "game_detail"
	PageSettings   navigation.TypeKey = "settings"
)

type Game struct {
	ID   int
	Name string
}

// gameListPage remembers its scroll position across navigation.
type gameListPage struct {
	selected int
}

func (p *gameListPage) SaveState(state navigation.State) {
	state["selected"] = p.selected
}

func (p *gameListPage) LoadState(_ any, saved navigation.State) {
	if saved != nil {
		p.selected = saved["selected"].(int)
		fmt.Printf("List: restored to index %d\n", p.selected)
	}
}

type gameDetailPage struct {
	game Game
}

func (p *gameDetailPage) OnNavigatedTo(navigation.NavigationArgs) {
	fmt.Printf("Detail: showing %s\n", p.game.Name)
}

// Example demonstrates registering pages, navigating forward and back.
func Example() {
	ctx := context.Background()
	list := &gameListPage{}

	registry := navigation.NewRegistry().
		Register(PageGameList, func(any) (navigation.Page, error) {
			return list, nil
		}).
		Register(PageGameDetail, func(p any) (navigation.Page, error) {
			return &gameDetailPage{game: p.(Game)}, nil
		})

	nav := navigation.NewCoordinator(registry)

	_ = nav.NavigateTo(ctx, PageGameList, nil)
	list.selected = 2
	_ = nav.NavigateTo(ctx, PageGameDetail, Game{ID: 1, Name: "Portal"})
	_ = nav.GoBack(ctx)

	fmt.Println("Can go forward:", nav.CanGoForward())

	// Output:
	// Detail: showing Portal
	// List: restored to index 2
	// Can go forward: true
}

// confirmPage asks before letting the user leave.
type confirmPage struct {
	answer func() bool
}

func (p *confirmPage) OnNavigatingFrom(_ context.Context, args *navigation.NavigatingFromArgs) error {
	d := args.Defer()
	go func() {
		args.SetCancel(!p.answer())
		d.Complete()
	}()
	return nil
}

// Example_backGuard demonstrates vetoing a physical back signal and a
// deferred navigating-from answer.
func Example_backGuard() {
	ctx := context.Background()
	leave := false

	registry := navigation.NewRegistry().
		Register(PageGameList, func(any) (navigation.Page, error) {
			return &gameListPage{}, nil
		}).
		Register(PageSettings, func(any) (navigation.Page, error) {
			return &confirmPage{answer: func() bool { return leave }}, nil
		})

	nav := navigation.NewCoordinator(registry)
	back := navigation.NewBackGuardChain(nav)

	_ = nav.NavigateTo(ctx, PageGameList, nil)
	_ = nav.NavigateTo(ctx, PageSettings, nil)

	overlayOpen := true
	handle := back.AddBackGuard(func(_ context.Context, cc *navigation.CancelContext) error {
		if overlayOpen {
			overlayOpen = false
			cc.Cancel()
		}
		return nil
	})
	defer back.RemoveBackGuard(handle)

	fmt.Println("1:", back.Trigger(ctx))
	fmt.Println("2:", back.Trigger(ctx))
	leave = true
	fmt.Println("3:", back.Trigger(ctx))
	fmt.Println("4:", back.Trigger(ctx))

	// Output:
	// 1: navigation cancelled
	// 2: navigation cancelled
	// 3: <nil>
	// 4: invalid navigation operation: no entry in that direction
}
