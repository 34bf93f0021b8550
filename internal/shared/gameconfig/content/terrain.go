// Package content 把地形定义和手工地图从嵌套 key-value 树解码成引擎对象。
package content

import (
	"fmt"

	"Wyrmgus/internal/shared/config"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/internal/world/transition"
	"Wyrmgus/modules/kit/errx"
)

// BlankNeighbor 是过渡表里表示“无可接壤地形”的邻居名。
const BlankNeighbor = "blank"

type TiledBackgroundDef struct {
	FirstTile int `mapstructure:"first_tile"`
	Columns   int `mapstructure:"columns"`
	Rows      int `mapstructure:"rows"`
}

// TransitionDef：本地形对着 Neighbor（地形 ident 或 blank）时，Shape 形状可用的图块。
type TransitionDef struct {
	Neighbor string `mapstructure:"neighbor"`
	Shape    string `mapstructure:"shape"`
	Tiles    []int  `mapstructure:"tiles"`
}

type TerrainDef struct {
	Ident          string   `mapstructure:"ident"`
	Name           string   `mapstructure:"name"`
	Character      string   `mapstructure:"character"`
	Color          string   `mapstructure:"color"`
	TileNumber     int      `mapstructure:"tile_number"`
	Overlay        bool     `mapstructure:"overlay"`
	AllowSingle    bool     `mapstructure:"allow_single"`
	Flags          []string `mapstructure:"flags"`
	DestroyedFlags []string `mapstructure:"destroyed_flags"`
	DefaultValue   int      `mapstructure:"default_value"`

	BaseTerrains        []string `mapstructure:"base_terrains"`
	InnerBorderTerrains []string `mapstructure:"inner_border_terrains"`
	OuterBorderTerrains []string `mapstructure:"outer_border_terrains"`

	SolidTiles      []int               `mapstructure:"solid_tiles"`
	DecorationTiles []int               `mapstructure:"decoration_tiles"`
	DamagedTiles    []int               `mapstructure:"damaged_tiles"`
	DestroyedTiles  []int               `mapstructure:"destroyed_tiles"`
	TiledBackground *TiledBackgroundDef `mapstructure:"tiled_background"`

	Transitions         []TransitionDef `mapstructure:"transitions"`
	AdjacentTransitions []TransitionDef `mapstructure:"adjacent_transitions"`
}

// IntermediateDef：A 和 B 不能直接接壤时，中间插入 Via。
type IntermediateDef struct {
	A   string `mapstructure:"a"`
	B   string `mapstructure:"b"`
	Via string `mapstructure:"via"`
}

type terrainFile struct {
	Terrains      []TerrainDef      `mapstructure:"terrains"`
	Intermediates []IntermediateDef `mapstructure:"intermediates"`
}

// LoadTerrainTypes 读取地形文件（yaml/json）并构建已 Finalize 的注册表。
func LoadTerrainTypes(path string) (*terrain.Registry, error) {
	tree, err := config.ReadTree(path)
	if err != nil {
		return nil, errx.Wrap(errx.ErrContentInvalid, err, map[string]any{"path": path})
	}
	return DecodeTerrainTypes(tree)
}

// DecodeTerrainTypes 分三步：注册全部地形 → 解析相互引用 → Finalize 后挂过渡图块。
// 任何一步出错都是内容错误，data 里带出问题地形的 ident。
func DecodeTerrainTypes(tree map[string]any) (*terrain.Registry, error) {
	var file terrainFile
	if err := config.DecodeTree(tree, &file); err != nil {
		return nil, errx.Wrap(errx.ErrContentInvalid, err, map[string]any{"reason": "terrain tree does not match schema"})
	}

	reg := terrain.NewRegistry()
	for _, def := range file.Terrains {
		t, err := newType(def)
		if err != nil {
			return nil, err
		}
		if err := reg.Add(t); err != nil {
			return nil, err
		}
	}

	lookup := func(owner, ident string) (*terrain.Type, error) {
		t, ok := reg.Get(ident)
		if !ok {
			return nil, errx.ErrContentInvalid.WithDataMap(map[string]any{
				"terrain": owner,
				"reason":  fmt.Sprintf("references unknown terrain %q", ident),
			})
		}
		return t, nil
	}
	for _, def := range file.Terrains {
		t, _ := reg.Get(def.Ident)
		for _, ident := range def.BaseTerrains {
			b, err := lookup(def.Ident, ident)
			if err != nil {
				return nil, err
			}
			t.AddBaseTerrain(b)
		}
		for _, ident := range def.InnerBorderTerrains {
			b, err := lookup(def.Ident, ident)
			if err != nil {
				return nil, err
			}
			t.AddInnerBorderTerrain(b)
		}
		for _, ident := range def.OuterBorderTerrains {
			b, err := lookup(def.Ident, ident)
			if err != nil {
				return nil, err
			}
			t.AddOuterBorderTerrain(b)
		}
	}
	for _, im := range file.Intermediates {
		a, err := lookup(im.A, im.A)
		if err != nil {
			return nil, err
		}
		b, err := lookup(im.A, im.B)
		if err != nil {
			return nil, err
		}
		via, err := lookup(im.A, im.Via)
		if err != nil {
			return nil, err
		}
		reg.SetIntermediate(a, b, via)
	}
	if err := reg.Finalize(); err != nil {
		return nil, err
	}

	for _, def := range file.Terrains {
		t, _ := reg.Get(def.Ident)
		if err := addTransitions(reg, t, def.Transitions, t.AddTransitionTiles); err != nil {
			return nil, err
		}
		if err := addTransitions(reg, t, def.AdjacentTransitions, t.AddAdjacentTransitionTiles); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func newType(def TerrainDef) (*terrain.Type, error) {
	t := terrain.NewType(def.Ident)
	t.Name = def.Name
	t.Character = def.Character
	t.Color = def.Color
	t.TileNumber = def.TileNumber
	t.Overlay = def.Overlay
	t.AllowSingle = def.AllowSingle
	t.DefaultValue = def.DefaultValue
	t.SolidTiles = def.SolidTiles
	t.DecorationTiles = def.DecorationTiles
	t.DamagedTiles = def.DamagedTiles
	t.DestroyedTiles = def.DestroyedTiles
	if def.TiledBackground != nil {
		t.TiledBackground = &terrain.TiledBackground{
			FirstTile: def.TiledBackground.FirstTile,
			Columns:   def.TiledBackground.Columns,
			Rows:      def.TiledBackground.Rows,
		}
	}

	var err error
	if t.Flags, err = terrain.ParseFlags(def.Flags); err != nil {
		return nil, errx.Wrap(errx.ErrContentInvalid, err, map[string]any{"terrain": def.Ident, "reason": "bad flags"})
	}
	if t.DestroyedFlags, err = terrain.ParseFlags(def.DestroyedFlags); err != nil {
		return nil, errx.Wrap(errx.ErrContentInvalid, err, map[string]any{"terrain": def.Ident, "reason": "bad destroyed flags"})
	}
	return t, nil
}

func addTransitions(reg *terrain.Registry, t *terrain.Type, defs []TransitionDef, add func(int, transition.Shape, ...int)) error {
	for _, d := range defs {
		neighbor := terrain.Blank
		if d.Neighbor != "" && d.Neighbor != BlankNeighbor {
			n, ok := reg.Get(d.Neighbor)
			if !ok {
				return errx.ErrContentInvalid.WithDataMap(map[string]any{
					"terrain": t.Ident,
					"reason":  fmt.Sprintf("transition references unknown terrain %q", d.Neighbor),
				})
			}
			neighbor = n.Index
		}
		shape, err := transition.ParseShape(d.Shape)
		if err != nil || shape == transition.None {
			return errx.Wrap(errx.ErrContentInvalid, err, map[string]any{
				"terrain": t.Ident,
				"reason":  fmt.Sprintf("bad transition shape %q", d.Shape),
			})
		}
		add(neighbor, shape, d.Tiles...)
	}
	return nil
}
