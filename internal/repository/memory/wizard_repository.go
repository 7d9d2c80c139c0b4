package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/lexcaraig/wheelbase-business/pkg/claimwizard"
)

// WizardRepository holds in-flight claim wizards keyed by user. Wizard state
// is deliberately ephemeral: an expired entry means the user starts over.
type WizardRepository struct {
	cache *cache.Cache
}

func NewWizardRepository(ttl time.Duration) *WizardRepository {
	return &WizardRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *WizardRepository) Save(userID string, w *claimwizard.Wizard) {
	r.cache.Set(userID, w, cache.DefaultExpiration)
}

func (r *WizardRepository) Get(userID string) (*claimwizard.Wizard, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*claimwizard.Wizard), true
	}
	return nil, false
}

func (r *WizardRepository) Delete(userID string) {
	r.cache.Delete(userID)
}
