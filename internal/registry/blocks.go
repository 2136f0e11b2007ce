package registry

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"voxmesh/internal/world"
)

// MaxTextureID is the largest texture ID a mesh vertex can carry.
const MaxTextureID = 511

// TextureKind selects how a block's texture ID is resolved per face.
type TextureKind uint8

const (
	TextureNone TextureKind = iota
	TextureSixSided
	TextureDecoration
)

// TextureData describes where a block's textures live in the atlas.
// Six-sided blocks add a per-face offset to a base index; decoration
// blocks use one texture for every face.
type TextureData struct {
	Kind       TextureKind
	Base       uint16
	Offsets    [world.NumFaces]uint16
	Decoration uint16
}

// SixSided builds a six-sided descriptor. Offsets are indexed by world.Face.
func SixSided(base uint16, offsets [world.NumFaces]uint16) TextureData {
	return TextureData{Kind: TextureSixSided, Base: base, Offsets: offsets}
}

// Uniform builds a six-sided descriptor using the same texture on every face.
func Uniform(tex uint16) TextureData {
	return TextureData{Kind: TextureSixSided, Base: tex}
}

// Decoration builds a single-texture descriptor.
func Decoration(tex uint16) TextureData {
	return TextureData{Kind: TextureDecoration, Decoration: tex}
}

// TextureID resolves the texture for a face. ok is false when the
// descriptor is empty or resolves outside the packable range.
func (t TextureData) TextureID(face world.Face) (id uint32, ok bool) {
	switch t.Kind {
	case TextureSixSided:
		if int(face) >= world.NumFaces {
			return 0, false
		}
		id = uint32(t.Base) + uint32(t.Offsets[face])
	case TextureDecoration:
		id = uint32(t.Decoration)
	default:
		return 0, false
	}
	if id > MaxTextureID {
		return 0, false
	}
	return id, true
}

// BlockAttribute defines the properties of a block type
type BlockAttribute struct {
	ID      world.Block
	Name    string
	Texture TextureData
}

// Registry maps block IDs to attributes. It is safe for concurrent reads.
type Registry struct {
	mu     sync.RWMutex
	blocks [256]*BlockAttribute
	names  map[string]world.Block
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{names: make(map[string]world.Block)}
}

// Register adds a block. Air cannot be registered and names must be unique.
func (r *Registry) Register(attr BlockAttribute) error {
	if attr.ID == world.BlockAir {
		return errors.New("block ID 0 is reserved for air")
	}
	if attr.Name == "" {
		return errors.Errorf("block %d has no name", attr.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing := r.blocks[attr.ID]; existing != nil {
		return errors.Errorf("block %d already registered as %q", attr.ID, existing.Name)
	}
	if id, ok := r.names[attr.Name]; ok {
		return errors.Errorf("block name %q already used by block %d", attr.Name, id)
	}
	a := attr
	r.blocks[attr.ID] = &a
	r.names[attr.Name] = attr.ID
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(attr BlockAttribute) {
	if err := r.Register(attr); err != nil {
		panic(err)
	}
}

// Texture returns the texture data for a block.
func (r *Registry) Texture(b world.Block) (TextureData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	attr := r.blocks[b]
	if attr == nil || attr.Texture.Kind == TextureNone {
		return TextureData{}, false
	}
	return attr.Texture, true
}

// Get returns the attribute for a block ID.
func (r *Registry) Get(b world.Block) (BlockAttribute, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	attr := r.blocks[b]
	if attr == nil {
		return BlockAttribute{}, false
	}
	return *attr, true
}

// ByName looks a block up by name.
func (r *Registry) ByName(name string) (BlockAttribute, bool) {
	r.mu.RLock()
	id, ok := r.names[name]
	r.mu.RUnlock()
	if !ok {
		return BlockAttribute{}, false
	}
	return r.Get(id)
}

// Names returns registered block names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for n := range r.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default returns a registry holding the built-in blocks. Grass uses three
// consecutive atlas tiles: side, top, bottom.
func Default() *Registry {
	r := New()

	r.MustRegister(BlockAttribute{ID: world.BlockStone, Name: "stone", Texture: Uniform(1)})
	r.MustRegister(BlockAttribute{ID: world.BlockDirt, Name: "dirt", Texture: Uniform(2)})

	var grass [world.NumFaces]uint16
	grass[world.FaceTop] = 1
	grass[world.FaceBottom] = 2
	r.MustRegister(BlockAttribute{ID: world.BlockGrass, Name: "grass", Texture: SixSided(3, grass)})

	r.MustRegister(BlockAttribute{ID: world.BlockSand, Name: "sand", Texture: Uniform(18)})
	r.MustRegister(BlockAttribute{ID: world.BlockPlanks, Name: "planks", Texture: Uniform(6)})
	r.MustRegister(BlockAttribute{ID: world.BlockBedrock, Name: "bedrock", Texture: Uniform(17)})
	r.MustRegister(BlockAttribute{ID: world.BlockFlower, Name: "flower", Texture: Decoration(12)})

	return r
}
