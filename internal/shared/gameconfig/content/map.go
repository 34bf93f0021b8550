package content

import (
	"fmt"
	"unicode/utf8"

	"Wyrmgus/internal/shared/config"
	"Wyrmgus/modules/kit/errx"
)

// VoidCharacter 在手工地图里表示“这一格没有地形”，交给补洞生成处理。
const VoidCharacter = '.'

type SubtemplateDef struct {
	Ident  string `mapstructure:"ident"`
	X      int    `mapstructure:"x"`
	Y      int    `mapstructure:"y"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	World  string `mapstructure:"world"`
}

// LayerDef 是一层手工地图：每行一个字符串，每个字符对应一种地形的 Character。
type LayerDef struct {
	Width        int              `mapstructure:"width"`
	Height       int              `mapstructure:"height"`
	Kind         string           `mapstructure:"kind"`
	World        string           `mapstructure:"world"`
	Terrain      []string         `mapstructure:"terrain"`
	Overlay      []string         `mapstructure:"overlay"`
	Subtemplates []SubtemplateDef `mapstructure:"subtemplates"`
}

type mapFile struct {
	Layers []LayerDef `mapstructure:"layers"`
}

func LoadMapLayers(path string) ([]LayerDef, error) {
	tree, err := config.ReadTree(path)
	if err != nil {
		return nil, errx.Wrap(errx.ErrContentInvalid, err, map[string]any{"path": path})
	}
	return DecodeMapLayers(tree)
}

// DecodeMapLayers 解码并校验尺寸：行数必须等于高度，每行字符数必须等于宽度；覆盖层可以整体省略。
func DecodeMapLayers(tree map[string]any) ([]LayerDef, error) {
	var file mapFile
	if err := config.DecodeTree(tree, &file); err != nil {
		return nil, errx.Wrap(errx.ErrContentInvalid, err, map[string]any{"reason": "map tree does not match schema"})
	}
	for i := range file.Layers {
		if err := validateLayer(i, &file.Layers[i]); err != nil {
			return nil, err
		}
	}
	return file.Layers, nil
}

func validateLayer(index int, d *LayerDef) error {
	bad := func(reason string) error {
		return errx.ErrContentInvalid.WithDataMap(map[string]any{"layer": index, "reason": reason})
	}
	if d.Width <= 0 || d.Height <= 0 {
		return bad("layer size must be positive")
	}
	check := func(name string, rows []string) error {
		if len(rows) != d.Height {
			return bad(fmt.Sprintf("%s has %d rows, want %d", name, len(rows), d.Height))
		}
		for y, row := range rows {
			if n := utf8.RuneCountInString(row); n != d.Width {
				return bad(fmt.Sprintf("%s row %d has %d cells, want %d", name, y, n, d.Width))
			}
		}
		return nil
	}
	if len(d.Terrain) > 0 {
		if err := check("terrain", d.Terrain); err != nil {
			return err
		}
	}
	if len(d.Overlay) > 0 {
		if err := check("overlay", d.Overlay); err != nil {
			return err
		}
	}
	for _, s := range d.Subtemplates {
		if s.Width <= 0 || s.Height <= 0 || s.X < 0 || s.Y < 0 || s.X+s.Width > d.Width || s.Y+s.Height > d.Height {
			return bad(fmt.Sprintf("subtemplate %q is outside the layer", s.Ident))
		}
	}
	return nil
}
