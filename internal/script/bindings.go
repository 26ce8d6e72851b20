package script

import (
	"fmt"

	"voxelforge.dev/internal/block"
)

// World is the slice of the chunk manager the script surface needs.
type World interface {
	Block(wx, wy, wz int) uint16
	SetBlock(wx, wy, wz int, id uint16) bool
	RemoveBlock(wx, wy, wz int) bool
}

// StatsFunc supplies engine.stats. The value must be JSON-encodable.
type StatsFunc func() any

// Bind registers the engine's host functions on the table:
//
//	world.set_block(x, y, z, name)
//	world.remove_block(x, y, z)
//	world.block(x, y, z) -> name
//	block_registry.register_block(name, props)
//	block_registry.get_block(name) -> props
//	engine.stats() -> object
func Bind(t *Table, w World, reg *block.Registry, stats StatsFunc) {
	t.Register("world", "set_block", func(args []any) (any, error) {
		x, y, z, err := argCoords(args)
		if err != nil {
			return nil, err
		}
		name, err := argString(args, 3)
		if err != nil {
			return nil, err
		}
		bt := reg.GetByName(name)
		if bt == nil {
			return nil, fmt.Errorf("script: unknown block %q", name)
		}
		if !w.SetBlock(x, y, z, bt.ID) {
			return nil, fmt.Errorf("script: (%d,%d,%d) is not loaded", x, y, z)
		}
		return nil, nil
	})

	t.Register("world", "remove_block", func(args []any) (any, error) {
		x, y, z, err := argCoords(args)
		if err != nil {
			return nil, err
		}
		return w.RemoveBlock(x, y, z), nil
	})

	t.Register("world", "block", func(args []any) (any, error) {
		x, y, z, err := argCoords(args)
		if err != nil {
			return nil, err
		}
		return reg.Get(w.Block(x, y, z)).Name, nil
	})

	t.Register("block_registry", "register_block", func(args []any) (any, error) {
		name, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		props, err := argMap(args, 1)
		if err != nil {
			return nil, err
		}
		bt, err := reg.Register(name, func(b *block.Type) {
			applyProps(b, props)
		})
		if err != nil {
			return nil, err
		}
		return float64(bt.ID), nil
	})

	t.Register("block_registry", "get_block", func(args []any) (any, error) {
		name, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		bt := reg.GetByName(name)
		if bt == nil {
			return nil, fmt.Errorf("script: unknown block %q", name)
		}
		return blockProps(bt), nil
	})

	t.Register("engine", "stats", func(args []any) (any, error) {
		if stats == nil {
			return map[string]any{}, nil
		}
		return stats(), nil
	})
}

func argCoords(args []any) (x, y, z int, err error) {
	if x, err = argInt(args, 0); err != nil {
		return
	}
	if y, err = argInt(args, 1); err != nil {
		return
	}
	z, err = argInt(args, 2)
	return
}

func applyProps(b *block.Type, props map[string]any) {
	boolProp := func(key string, dst *bool) {
		if v, ok := props[key].(bool); ok {
			*dst = v
		}
	}
	boolProp("solid", &b.Solid)
	boolProp("liquid", &b.Liquid)
	boolProp("opaque", &b.Opaque)
	boolProp("transparent", &b.Transparent)
	boolProp("breakable", &b.Breakable)
	boolProp("billboard", &b.Billboard)
	boolProp("item", &b.Item)
	if v, ok := props["hardness"].(float64); ok {
		b.Hardness = float32(v)
	}
}

func blockProps(bt *block.Type) map[string]any {
	return map[string]any{
		"id":          float64(bt.ID),
		"name":        bt.Name,
		"solid":       bt.Solid,
		"liquid":      bt.Liquid,
		"opaque":      bt.Opaque,
		"transparent": bt.Transparent,
		"breakable":   bt.Breakable,
		"billboard":   bt.Billboard,
		"item":        bt.Item,
		"hardness":    float64(bt.Hardness),
		"render_type": bt.RenderType().String(),
	}
}
