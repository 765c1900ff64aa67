// Package panel holds the resource panel operations: login, logout, loading
// the resource list and mutating it. Every operation is a single request to
// the resource API followed, on success, by a full reload of the list. The
// displayed table is never patched locally.
package panel

import (
	"context"
	"errors"
	"log"

	"github.com/andreasstove999/resource-panel/internal/clients"
	"github.com/andreasstove999/resource-panel/internal/middleware"
	"github.com/andreasstove999/resource-panel/internal/resource"
)

const (
	RouteLogin     = "/"
	RouteDashboard = "/dashboard"
)

// User-facing messages.
const (
	MsgLoginFailed   = "Login failed. Please try again."
	MsgLoggedOut     = "Logged out!"
	MsgMissingFields = "Please enter a resource name and a maximum number of units."
	MsgAddFailed     = "Failed to add resource. Please try again."
	MsgUpdateFailed  = "Failed to update quantity. Please try again."
	MsgLoadFailed    = "Error loading resources"
	MsgNoResources   = "No resources found"
	MsgLogoutConfirm = "Are you sure you want to log out?"
)

// API is the resource API as seen by the panel.
type API interface {
	Login(ctx context.Context, creds resource.Credentials) (clients.LoginResult, error)
	ListResources(ctx context.Context) (resource.Snapshot, error)
	CreateResource(ctx context.Context, in resource.NewResource) error
	AdjustQuantity(ctx context.Context, name string, change int) error
}

// Notifier is told about mutations the resource API has confirmed.
type Notifier interface {
	ResourceCreated(ctx context.Context, in resource.NewResource) error
	QuantityAdjusted(ctx context.Context, name string, change int) error
}

type nopNotifier struct{}

func (nopNotifier) ResourceCreated(context.Context, resource.NewResource) error { return nil }
func (nopNotifier) QuantityAdjusted(context.Context, string, int) error { return nil }

type ListState int

const (
	// ListReady carries a snapshot to render (possibly empty).
	ListReady ListState = iota
	// ListFailed replaces the table body with the error row.
	ListFailed
	// ListMalformed aborts rendering; whatever is displayed stays.
	ListMalformed
)

// ListView is the result of one list fetch.
type ListView struct {
	State     ListState
	Resources resource.Snapshot
}

// Outcome tells the presentation layer what to do after an operation.
// The zero value means "nothing changes".
type Outcome struct {
	// Alert is shown to the user as a blocking message.
	Alert string
	// Redirect is the route to navigate to.
	Redirect string
	// Principal is set to the username after a successful login.
	Principal string
	// ResetForm clears the add-resource form.
	ResetForm bool
	// List, when non-nil, replaces the table body.
	List *ListView
}

type Panel struct {
	api      API
	notifier Notifier
	logger   *log.Logger
}

func New(api API, notifier Notifier, logger *log.Logger) *Panel {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Panel{api: api, notifier: notifier, logger: logger}
}

// Login submits the credentials once. The credentials are not kept.
func (p *Panel) Login(ctx context.Context, username, password string) Outcome {
	res, err := p.api.Login(ctx, resource.Credentials{Username: username, Password: password})
	if err != nil {
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) {
			return Outcome{Alert: apiErr.Message}
		}
		p.logf(ctx, "login failed: %v", err)
		return Outcome{Alert: MsgLoginFailed}
	}

	p.logf(ctx, "login ok user=%s message=%q", username, res.Message)
	return Outcome{Redirect: RouteDashboard, Principal: username}
}

// Logout navigates back to the login page once the user has confirmed.
func (p *Panel) Logout(ctx context.Context, confirmed bool) Outcome {
	if !confirmed {
		return Outcome{}
	}
	return Outcome{Alert: MsgLoggedOut, Redirect: RouteLogin}
}

func (p *Panel) LoadResources(ctx context.Context) ListView {
	snap, err := p.api.ListResources(ctx)
	if err != nil {
		if clients.IsDecodeError(err) {
			p.logf(ctx, "render aborted: %v", err)
			return ListView{State: ListMalformed}
		}
		p.logf(ctx, "error loading resources: %v", err)
		return ListView{State: ListFailed}
	}
	return ListView{State: ListReady, Resources: snap}
}

// AddResource validates the form before any request is sent.
func (p *Panel) AddResource(ctx context.Context, name, maxUnits string) Outcome {
	in, err := resource.ParseNewResource(name, maxUnits)
	if err != nil {
		return Outcome{Alert: MsgMissingFields}
	}

	if err := p.api.CreateResource(ctx, in); err != nil {
		p.logf(ctx, "error adding resource %q: %v", in.Name, err)
		return Outcome{Alert: MsgAddFailed}
	}

	if err := p.notifier.ResourceCreated(ctx, in); err != nil {
		p.logf(ctx, "publish resource created %q: %v", in.Name, err)
	}

	list := p.LoadResources(ctx)
	return Outcome{ResetForm: true, List: &list}
}

// UpdateQuantity applies delta on the server and reloads the list. On failure
// the displayed table is left as it is.
func (p *Panel) UpdateQuantity(ctx context.Context, name string, delta int) Outcome {
	if err := p.api.AdjustQuantity(ctx, name, delta); err != nil {
		p.logf(ctx, "error updating quantity of %q by %d: %v", name, delta, err)
		return Outcome{Alert: MsgUpdateFailed}
	}

	if err := p.notifier.QuantityAdjusted(ctx, name, delta); err != nil {
		p.logf(ctx, "publish quantity adjusted %q: %v", name, err)
	}

	list := p.LoadResources(ctx)
	return Outcome{List: &list}
}

func (p *Panel) logf(ctx context.Context, format string, args ...any) {
	if p.logger == nil {
		return
	}
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		format += " cid=%s"
		args = append(args, cid)
	}
	p.logger.Printf(format, args...)
}
