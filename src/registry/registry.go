package registry

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/logger"
	"github.com/gate33/learn2earn/src/utils/model"
	"github.com/gate33/learn2earn/src/utils/monitoring"

	"github.com/jackc/pgtype"
	cache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const cacheKey = "contracts"

// Entry resolves one network to its deployed contract pair
type Entry struct {
	ContractAddress string `json:"contractAddress"`
	TokenAddress    string `json:"tokenAddress"`
}

// Short names users and old configs keep using for the canonical networks
var aliases = map[string]string{
	"matic":   "polygon",
	"pol":     "polygon",
	"avax":    "avalanche",
	"bnb":     "bsc",
	"binance": "bsc",
	"eth":     "ethereum",
	"mainnet": "ethereum",
	"op":      "optimism",
}

// Registry resolves a network name to its distributor and token contract
// addresses. The merged mapping from both persisted sources is cached
// wholesale, so concurrent readers see either the old or the new mapping,
// never a partial one.
type Registry struct {
	Config *config.Config
	Log    *logrus.Entry

	db      *gorm.DB
	cache   *cache.Cache
	monitor monitoring.Monitor
}

func NewRegistry(config *config.Config) (self *Registry) {
	self = new(Registry)
	self.Config = config
	self.Log = logger.NewSublogger("registry")
	self.cache = cache.New(config.Registry.CacheTtl, config.Registry.CacheCleanupInterval)
	return
}

func (self *Registry) WithDb(db *gorm.DB) *Registry {
	self.db = db
	return self
}

func (self *Registry) WithMonitor(monitor monitoring.Monitor) *Registry {
	self.monitor = monitor
	return self
}

// Resolve looks a network up by its normalized name and every alias of it.
// A missing network is not an error, callers disable that network instead.
func (self *Registry) Resolve(ctx context.Context, network string) (entry Entry, found bool, err error) {
	mapping, err := self.load(ctx)
	if err != nil {
		return
	}

	for _, candidate := range candidates(network) {
		entry, found = mapping[candidate]
		if found && entry.ContractAddress != "" {
			return
		}
	}

	found = false
	if self.monitor != nil {
		self.monitor.GetReport().Learn2Earn.Errors.RegistryLookupMisses.Inc()
	}
	return
}

// Reset forces a reload on the next Resolve
func (self *Registry) Reset() {
	self.cache.Flush()
}

func candidates(network string) (out []string) {
	name := strings.ToLower(strings.TrimSpace(network))
	out = append(out, name)

	// Alias pointing at its canonical name
	if canonical, ok := aliases[name]; ok {
		out = append(out, canonical)
	}

	// Canonical name whose config may be stored under an alias
	for alias, canonical := range aliases {
		if canonical == name {
			out = append(out, alias)
		}
	}
	return
}

func (self *Registry) load(ctx context.Context) (mapping map[string]Entry, err error) {
	if cached, ok := self.cache.Get(cacheKey); ok {
		return cached.(map[string]Entry), nil
	}

	mapping = make(map[string]Entry)

	// Fallback source first, per-network rows override it
	var settings model.PlatformSettings
	err = self.db.WithContext(ctx).
		Where("id = 1").
		First(&settings).
		Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No aggregate settings document, fine
		err = nil
	case err != nil:
		self.Log.WithError(err).Error("Failed to load platform settings")
		return nil, err
	default:
		if settings.Contracts.Status == pgtype.Present {
			var fromSettings map[string]Entry
			err = json.Unmarshal(settings.Contracts.Bytes, &fromSettings)
			if err != nil {
				return nil, errors.Wrap(err, "platform settings contracts are malformed")
			}
			for network, entry := range fromSettings {
				mapping[strings.ToLower(strings.TrimSpace(network))] = entry
			}
		}
	}

	var configs []model.ContractConfig
	err = self.db.WithContext(ctx).
		Find(&configs).
		Error
	if err != nil {
		self.Log.WithError(err).Error("Failed to load contract configs")
		return nil, err
	}

	for _, c := range configs {
		mapping[strings.ToLower(strings.TrimSpace(c.Network))] = Entry{
			ContractAddress: c.ContractAddress,
			TokenAddress:    c.TokenAddress,
		}
	}

	self.cache.Set(cacheKey, mapping, cache.DefaultExpiration)
	return
}
