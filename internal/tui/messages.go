package tui

import (
	"github.com/mmcdole/wooterm/internal/domain"
	"github.com/mmcdole/wooterm/internal/search"
)

// pageSyncedMsg carries a page fetch result back to the screen that asked for it
type pageSyncedMsg struct {
	ScreenID uint64
	Seq      uint64
	Page     int
	Err      error
}

// dashboardLoadedMsg signals the end of a dashboard reload
type dashboardLoadedMsg struct {
	ScreenID uint64
	Snapshot *domain.DashboardSnapshot
	Err      error
}

// orderLoadedMsg carries a refreshed order and its refunds
type orderLoadedMsg struct {
	ScreenID uint64
	Order    *domain.Order
	Refunded []domain.RefundedProduct
	Err      error
}

// searchResultsMsg carries remote product matches and local order matches
type searchResultsMsg struct {
	ScreenID uint64
	Query    string
	Products []*domain.Product
	Orders   []search.Result
	Err      error
}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
