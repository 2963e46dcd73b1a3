package storefront

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// CartStorageKey is the key the cart is stored under.
const CartStorageKey = "bonneaffaire78_cart"

// ErrNotStored is returned by Storage.Get for an unknown key.
var ErrNotStored = errors.New("key not stored")

// Storage is the client's durable key-value store.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// FileStorage keeps one file per key under Dir.
type FileStorage struct {
	fs  afero.Fs
	dir string
}

func NewFileStorage(fs afero.Fs, dir string) *FileStorage {
	return &FileStorage{fs: fs, dir: dir}
}

// NewOSFileStorage stores keys on the local disk.
func NewOSFileStorage(dir string) *FileStorage {
	return NewFileStorage(afero.NewOsFs(), dir)
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStorage) Get(key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotStored
	}
	return data, err
}

// Set replaces the value through a temporary file and a rename.
func (s *FileStorage) Set(key string, value []byte) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	tmp := s.path(key) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, value, 0o644); err != nil {
		return err
	}
	return s.fs.Rename(tmp, s.path(key))
}

type MemoryStorage struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (s *MemoryStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotStored
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStorage) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// LoadCart reads the stored cart. A missing, unreadable or corrupt value
// yields an empty cart; the problem is logged, never returned.
func LoadCart(storage Storage, logger *zap.Logger) *Cart {
	data, err := storage.Get(CartStorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotStored) {
			logger.Warn("Failed to read stored cart, starting empty", zap.Error(err))
		}
		return &Cart{}
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("Stored cart is corrupt, starting empty", zap.Error(err))
		return &Cart{}
	}

	cart := &Cart{}
	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 {
			logger.Warn("Dropping invalid cart line", zap.String("id", item.ID), zap.Int("quantity", item.Quantity))
			continue
		}
		cart.Items = append(cart.Items, item)
	}
	return cart
}

// SaveCart stores the cart as a JSON array of lines.
func SaveCart(storage Storage, cart *Cart) error {
	items := cart.Items
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return storage.Set(CartStorageKey, data)
}
