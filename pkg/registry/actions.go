package registry

import (
	"log/slog"

	"github.com/flowboard/flowboard/pkg/actions/assignuser"
	"github.com/flowboard/flowboard/pkg/actions/changestatus"
	"github.com/flowboard/flowboard/pkg/actions/createcard"
	"github.com/flowboard/flowboard/pkg/actions/sendnotification"
	"github.com/flowboard/flowboard/pkg/actions/setpriority"
	"github.com/flowboard/flowboard/pkg/actions/updatefield"
	"github.com/flowboard/flowboard/pkg/protocol"
)

// Stores bundles the collaborator interfaces the built-in action handlers
// depend on.
type Stores struct {
	Cards         protocol.CardStore
	Members       protocol.MembershipStore
	Notifications protocol.NotificationSink
	CustomFields  protocol.CustomFieldStore
}

// Default returns a registry with every built-in action registered.
func Default(logger *slog.Logger, stores Stores) *Registry {
	r := NewRegistry(logger)

	r.Register(assignuser.NewFactory(stores.Cards, stores.Members))
	r.Register(changestatus.NewFactory(stores.Cards))
	r.Register(setpriority.NewFactory(stores.Cards))
	r.Register(sendnotification.NewFactory(stores.Notifications))
	r.Register(createcard.NewFactory(stores.Cards, stores.Members))
	r.Register(updatefield.NewFactory(stores.CustomFields))

	return r
}
