package resource

import (
	"log/slog"

	"github.com/penshort/roster/internal/metrics"
	"github.com/penshort/roster/internal/model"
	"github.com/penshort/roster/internal/repository"
	"github.com/penshort/roster/internal/router"
	"github.com/penshort/roster/internal/viewset"
)

// Stores holds the stores backing the registered view sets.
type Stores struct {
	Users     viewset.Store[model.User]
	Receivers viewset.Store[model.Receiver]
}

// RepositoryStores returns the postgres backed stores of repo.
func RepositoryStores(repo *repository.Repository) Stores {
	return Stores{Users: repo.Users(), Receivers: repo.Receivers()}
}

// EmptyStores returns stores that hold nothing and refuse writes.
// They let the routes be built without a database, e.g. to render the
// schema offline.
func EmptyStores() Stores {
	return Stores{
		Users:     repository.Empty[model.User]{},
		Receivers: repository.Empty[model.Receiver]{},
	}
}

// Register adds the users and receivers view sets to r.
func Register(r *router.SimpleRouter, stores Stores, logger *slog.Logger, recorder metrics.Recorder) {
	r.Register("users", viewset.New[model.User]("users", stores.Users, NewUserSerializer(), logger, recorder), "user")
	r.Register("receivers", viewset.New[model.Receiver]("receivers", stores.Receivers, NewReceiverSerializer(), logger, recorder), "receiver")
}
