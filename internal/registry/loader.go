package registry

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"voxmesh/internal/world"
)

// Definitions is the YAML block definition format.
//
//	templates:
//	  column:
//	    textures: {top: "#end", bottom: "#end", all: "#side"}
//	blocks:
//	  - {id: 9, name: log, parent: column, textures: {end: "21", side: "20"}}
//	  - {id: 10, name: tallgrass, decoration: 30}
type Definitions struct {
	Templates map[string]Template `yaml:"templates"`
	Blocks    []BlockDef          `yaml:"blocks"`
}

// Template is a reusable texture layout. Templates may have parents.
type Template struct {
	Parent   string            `yaml:"parent"`
	Textures map[string]string `yaml:"textures"`
}

// BlockDef defines one block. Texture values are atlas indices or "#key"
// references to other keys of the same map.
type BlockDef struct {
	ID         int               `yaml:"id"`
	Name       string            `yaml:"name"`
	Parent     string            `yaml:"parent"`
	Textures   map[string]string `yaml:"textures"`
	Decoration *int              `yaml:"decoration"`
}

var faceKeys = [world.NumFaces]string{
	world.FaceNorth:  "north",
	world.FaceSouth:  "south",
	world.FaceEast:   "east",
	world.FaceWest:   "west",
	world.FaceTop:    "top",
	world.FaceBottom: "bottom",
}

// maxTemplateDepth bounds parent chains and reference hops.
const maxTemplateDepth = 10

// LoadFile reads block definitions from a YAML file into r.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open block definitions")
	}
	defer f.Close()
	return errors.Wrapf(r.Load(f), "load %s", path)
}

// Load reads block definitions and registers every block. It stops at the
// first invalid block; blocks before it stay registered.
func (r *Registry) Load(in io.Reader) error {
	var defs Definitions
	if err := yaml.NewDecoder(in).Decode(&defs); err != nil && err != io.EOF {
		return errors.Wrap(err, "parse block definitions")
	}

	for _, def := range defs.Blocks {
		if def.ID < 1 || def.ID > 255 {
			return errors.Errorf("block %q: id %d out of range 1..255", def.Name, def.ID)
		}
		tex, err := defs.textureData(def)
		if err != nil {
			return errors.Wrapf(err, "block %q", def.Name)
		}
		if err := r.Register(BlockAttribute{ID: world.Block(def.ID), Name: def.Name, Texture: tex}); err != nil {
			return err
		}
	}
	return nil
}

func (d *Definitions) textureData(def BlockDef) (TextureData, error) {
	if def.Decoration != nil {
		if *def.Decoration < 0 || *def.Decoration > MaxTextureID {
			return TextureData{}, errors.Errorf("decoration texture %d out of range", *def.Decoration)
		}
		return Decoration(uint16(*def.Decoration)), nil
	}

	textures, err := d.inherit(def.Parent, def.Textures)
	if err != nil {
		return TextureData{}, err
	}
	if len(textures) == 0 {
		return TextureData{}, nil
	}

	var ids [world.NumFaces]int
	base := MaxTextureID + 1
	for f, key := range faceKeys {
		name := key
		if _, ok := textures[name]; !ok {
			name = "all"
		}
		id, err := resolveTexture(textures, name)
		if err != nil {
			return TextureData{}, errors.Wrapf(err, "%s face", key)
		}
		ids[f] = id
		base = min(base, id)
	}

	var offsets [world.NumFaces]uint16
	for f, id := range ids {
		offsets[f] = uint16(id - base)
	}
	return SixSided(uint16(base), offsets), nil
}

// inherit merges the template chain starting at parent under own. Keys in
// own win over inherited ones.
func (d *Definitions) inherit(parent string, own map[string]string) (map[string]string, error) {
	merged := make(map[string]string, len(own))
	for k, v := range own {
		merged[k] = v
	}
	for depth := 0; parent != ""; depth++ {
		if depth == maxTemplateDepth {
			return nil, errors.Errorf("template chain too deep at %q", parent)
		}
		tpl, ok := d.Templates[parent]
		if !ok {
			return nil, errors.Errorf("unknown template %q", parent)
		}
		for k, v := range tpl.Textures {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
		parent = tpl.Parent
	}
	return merged, nil
}

// resolveTexture follows "#key" references until it reaches an atlas index.
func resolveTexture(textures map[string]string, key string) (int, error) {
	value, ok := textures[key]
	if !ok {
		return 0, errors.Errorf("no texture for %q", key)
	}
	for i := 0; strings.HasPrefix(value, "#"); i++ {
		if i == maxTemplateDepth {
			return 0, errors.Errorf("texture reference loop at %q", value)
		}
		ref := strings.TrimPrefix(value, "#")
		next, ok := textures[ref]
		if !ok {
			return 0, errors.Errorf("unresolved texture reference %q", value)
		}
		value = next
	}
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.Wrapf(err, "texture %q", value)
	}
	if id < 0 || id > MaxTextureID {
		return 0, errors.Errorf("texture %d out of range 0..%d", id, MaxTextureID)
	}
	return id, nil
}
