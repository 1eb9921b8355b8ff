package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

type metaKey struct {
	pageID int64
	key    string
}

// Repository implements hiddencontent.Repository using in-memory storage
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	pages  map[int64]*hiddencontent.Page
	meta   map[metaKey]string
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		pages: make(map[int64]*hiddencontent.Page),
		meta:  make(map[metaKey]string),
	}
}

// Page operations

func (r *Repository) CreatePage(ctx context.Context, page *hiddencontent.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if page.ID == 0 {
		r.nextID++
		page.ID = r.nextID
	} else if _, exists := r.pages[page.ID]; exists {
		return hiddencontent.ErrPageExists
	} else if page.ID > r.nextID {
		r.nextID = page.ID
	}
	now := time.Now().UTC()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	page.UpdatedAt = now

	// Create a copy to avoid external modifications
	pageCopy := *page
	r.pages[page.ID] = &pageCopy

	return nil
}

func (r *Repository) GetPage(ctx context.Context, id int64) (*hiddencontent.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, exists := r.pages[id]
	if !exists {
		return nil, hiddencontent.ErrPageNotFound
	}

	// Return a copy to prevent external modifications
	pageCopy := *page
	return &pageCopy, nil
}

func (r *Repository) UpdatePage(ctx context.Context, page *hiddencontent.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[page.ID]; !exists {
		return hiddencontent.ErrPageNotFound
	}

	page.UpdatedAt = time.Now().UTC()
	pageCopy := *page
	r.pages[page.ID] = &pageCopy

	return nil
}

func (r *Repository) DeletePage(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[id]; !exists {
		return hiddencontent.ErrPageNotFound
	}

	delete(r.pages, id)
	for k := range r.meta {
		if k.pageID == id {
			delete(r.meta, k)
		}
	}
	return nil
}

func (r *Repository) ListPages(ctx context.Context, postType hiddencontent.PostType) ([]*hiddencontent.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*hiddencontent.Page
	for _, page := range r.pages {
		if postType == "" || page.Type == postType {
			pageCopy := *page
			result = append(result, &pageCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Metadata operations

func (r *Repository) GetPageMeta(ctx context.Context, pageID int64, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.meta[metaKey{pageID: pageID, key: key}]
	return value, ok, nil
}

func (r *Repository) SetPageMeta(ctx context.Context, pageID int64, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Verify page exists
	if _, exists := r.pages[pageID]; !exists {
		return hiddencontent.ErrPageNotFound
	}

	r.meta[metaKey{pageID: pageID, key: key}] = value
	return nil
}
