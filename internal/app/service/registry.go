package service

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/7Lumine/whitelistbot/internal/domain"
)

// DefaultAlternatePrefix marca las identidades del namespace alternate.
const DefaultAlternatePrefix = "."

// Registry es la fuente de verdad de la whitelist. Un solo RWMutex cubre el
// mapa principal y los dos índices por cuenta; toda mutación mantiene el lock
// durante validar → mutar memoria → persistir.
type Registry struct {
	mu     sync.RWMutex
	store  Store
	clock  Clock
	log    zerolog.Logger
	prefix string

	entries map[string]*domain.Entry // identidad en minúsculas → entrada
	order   []string                 // claves en orden de inserción
	byAcct  [2]map[string]string     // por namespace: cuenta → identidad guardada
}

type RegistryOption func(*Registry)

func WithClock(c Clock) RegistryOption {
	return func(r *Registry) { r.clock = c }
}

func WithLogger(l zerolog.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// NewRegistry no carga nada; llamar a Load antes de usarlo.
// Un prefijo vacío se reemplaza por el default para no mezclar namespaces.
func NewRegistry(store Store, prefix string, opts ...RegistryOption) *Registry {
	if prefix == "" {
		prefix = DefaultAlternatePrefix
	}
	r := &Registry{
		store:  store,
		clock:  systemClock{},
		log:    log.With().Str("component", "registry").Logger(),
		prefix: prefix,
	}
	for _, o := range opts {
		o(r)
	}
	r.resetLocked()
	return r
}

func key(identity string) string { return strings.ToLower(identity) }

func (r *Registry) Prefix() string { return r.prefix }

// StoredIdentity devuelve la forma guardada del handle que escribió el usuario.
func (r *Registry) StoredIdentity(identity string, ns domain.Namespace) string {
	if ns == domain.Alternate {
		return r.prefix + identity
	}
	return identity
}

// DisplayIdentity es la inversa de StoredIdentity (para pre-llenar formularios).
func (r *Registry) DisplayIdentity(stored string, ns domain.Namespace) string {
	if ns == domain.Alternate {
		return strings.TrimPrefix(stored, r.prefix)
	}
	return stored
}

// Load descarta el estado en memoria y lo reconstruye desde el store.
// Si el store falla seguimos con la whitelist vacía.
func (r *Registry) Load(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resetLocked()
	entries, err := r.store.Load(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("whitelist load failed, continuing with an empty whitelist")
		return
	}
	for _, e := range entries {
		k := key(e.Identity)
		if k == "" {
			continue
		}
		if _, dup := r.entries[k]; dup {
			r.log.Warn().Str("identity", e.Identity).Msg("duplicate identity in store, keeping the last one")
			r.dropLocked(k)
		}
		if e.AccountID != "" {
			if other, taken := r.byAcct[e.Namespace][e.AccountID]; taken {
				r.log.Warn().
					Str("identity", e.Identity).
					Str("linked", other).
					Str("namespace", e.Namespace.String()).
					Msg("account already linked in this namespace, loading entry unlinked")
				e.AccountID = ""
			}
		}
		r.insertLocked(e)
	}
	r.log.Info().Int("players", len(r.entries)).Msg("whitelist loaded")
}

// Reload es el nombre que usan los comandos de admin.
func (r *Registry) Reload(ctx context.Context) { r.Load(ctx) }

// Save escribe el mapa completo. El error se devuelve para el shutdown; las
// mutaciones sólo lo loguean.
func (r *Registry) Save(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(ctx)
}

func (r *Registry) Add(ctx context.Context, identity, accountID string, ns domain.Namespace) domain.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.addLocked(identity, accountID, ns)
	r.persistIfOK(ctx, res)
	return res
}

// Update reemplaza la entrada de (accountID, ns). Si la cuenta no tenía
// entrada en ese namespace se comporta como Add. Ante conflicto la entrada
// vieja queda intacta.
func (r *Registry) Update(ctx context.Context, newIdentity, accountID string, ns domain.Namespace) domain.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.updateLocked(newIdentity, accountID, ns)
	r.persistIfOK(ctx, res)
	return res
}

// Register decide alta o edición bajo el mismo lock, así no hay carrera entre
// la consulta previa y la escritura.
func (r *Registry) Register(ctx context.Context, identity, accountID string, ns domain.Namespace) domain.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !ns.Valid() {
		return domain.InvalidName
	}
	linked := false
	if accountID != "" {
		_, linked = r.byAcct[ns][accountID]
	}
	var res domain.Result
	if linked {
		res = r.updateLocked(identity, accountID, ns)
	} else {
		res = r.addLocked(identity, accountID, ns)
	}
	r.persistIfOK(ctx, res)
	return res
}

// Remove espera la forma guardada exacta (con prefijo si es alternate).
func (r *Registry) Remove(ctx context.Context, identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(identity)
	if _, ok := r.entries[k]; !ok {
		return false
	}
	r.dropLocked(k)
	r.log.Debug().Str("identity", identity).Msg("whitelist remove")
	r.persistLocked(ctx)
	return true
}

func (r *Registry) IsWhitelisted(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key(identity)]
	return ok
}

func (r *Registry) ByAccount(accountID string, ns domain.Namespace) (string, bool) {
	if accountID == "" || !ns.Valid() {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byAcct[ns][accountID]
	return id, ok
}

// List devuelve una copia en orden de inserción.
func (r *Registry) List() []domain.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ---------- internos (caller tiene r.mu) ----------

func (r *Registry) addLocked(identity, accountID string, ns domain.Namespace) domain.Result {
	if !ns.Valid() || !domain.ValidIdentity(identity, ns) {
		return domain.InvalidName
	}
	stored := r.StoredIdentity(identity, ns)
	if _, ok := r.entries[key(stored)]; ok {
		return domain.AlreadyExists
	}
	if accountID != "" {
		if _, ok := r.byAcct[ns][accountID]; ok {
			return domain.AccountAlreadyRegistered
		}
	}
	r.insertLocked(r.newEntry(stored, accountID, ns))
	r.log.Debug().Str("identity", stored).Str("account", accountID).Str("namespace", ns.String()).Msg("whitelist add")
	return domain.Success
}

func (r *Registry) updateLocked(newIdentity, accountID string, ns domain.Namespace) domain.Result {
	if !ns.Valid() || !domain.ValidIdentity(newIdentity, ns) {
		return domain.InvalidName
	}
	if accountID == "" {
		return r.addLocked(newIdentity, accountID, ns)
	}
	old, ok := r.byAcct[ns][accountID]
	if !ok {
		return r.addLocked(newIdentity, accountID, ns)
	}
	stored := r.StoredIdentity(newIdentity, ns)
	if _, taken := r.entries[key(stored)]; taken && key(stored) != key(old) {
		return domain.AlreadyExists
	}
	r.dropLocked(key(old))
	r.insertLocked(r.newEntry(stored, accountID, ns))
	r.log.Debug().Str("from", old).Str("to", stored).Str("account", accountID).Msg("whitelist update")
	return domain.Updated
}

func (r *Registry) newEntry(stored, accountID string, ns domain.Namespace) domain.Entry {
	return domain.Entry{
		Identity:     stored,
		AccountID:    accountID,
		RegisteredAt: r.clock.Now().Format(domain.TimestampLayout),
		Namespace:    ns,
	}
}

func (r *Registry) insertLocked(e domain.Entry) {
	k := key(e.Identity)
	r.entries[k] = &e
	r.order = append(r.order, k)
	if e.AccountID != "" {
		r.byAcct[e.Namespace][e.AccountID] = e.Identity
	}
}

func (r *Registry) dropLocked(k string) {
	e, ok := r.entries[k]
	if !ok {
		return
	}
	delete(r.entries, k)
	if i := slices.Index(r.order, k); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	if e.AccountID != "" && r.byAcct[e.Namespace][e.AccountID] == e.Identity {
		delete(r.byAcct[e.Namespace], e.AccountID)
	}
}

func (r *Registry) resetLocked() {
	r.entries = map[string]*domain.Entry{}
	r.order = nil
	r.byAcct = [2]map[string]string{{}, {}}
}

func (r *Registry) snapshotLocked() []domain.Entry {
	out := make([]domain.Entry, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, *r.entries[k])
	}
	return out
}

func (r *Registry) saveLocked(ctx context.Context) error {
	return r.store.Save(ctx, r.snapshotLocked())
}

func (r *Registry) persistIfOK(ctx context.Context, res domain.Result) {
	if res.OK() {
		r.persistLocked(ctx)
	}
}

// persistLocked no reintenta: la memoria sigue siendo la verdad hasta el
// próximo guardado exitoso.
func (r *Registry) persistLocked(ctx context.Context) {
	if err := r.saveLocked(ctx); err != nil {
		r.log.Error().Err(err).Int("players", len(r.entries)).Msg("whitelist save failed, memory is ahead of disk")
	}
}
