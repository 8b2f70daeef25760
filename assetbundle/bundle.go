// Package assetbundle reads and writes game asset containers.
//
// A container is a flat list of objects. Each object has a class, an internal
// name and an opaque payload. Textures and text assets can be decoded and
// re-encoded; objects of any other class are kept byte for byte.
package assetbundle

import (
	"fmt"
)

// ClassID identifies the type of an object.
type ClassID int32

const (
	// ClassTexture2D is an image record.
	ClassTexture2D ClassID = 28
	// ClassTextAsset is a text record.
	ClassTextAsset ClassID = 49
)

func (c ClassID) String() string {
	switch c {
	case ClassTexture2D:
		return "Texture2D"
	case ClassTextAsset:
		return "TextAsset"
	default:
		return fmt.Sprintf("Class(%d)", int32(c))
	}
}

// Object is an embedded record.
type Object struct {
	PathID int64
	Class  ClassID
	Name   string
	Data   []byte
}

// Bundle is the in-memory object graph of a container.
type Bundle struct {
	// EngineVersion is the version of the engine that produced the container.
	EngineVersion string
	// Compressed is set when the object table is stored compressed.
	Compressed bool
	Objects    []*Object
}

// ObjectsOf returns the objects of the given class, in container order.
func (b *Bundle) ObjectsOf(class ClassID) []*Object {
	var objects []*Object

	for _, obj := range b.Objects {
		if obj.Class == class {
			objects = append(objects, obj)
		}
	}

	return objects
}

// Find returns the first object of the given class named name.
func (b *Bundle) Find(class ClassID, name string) (*Object, bool) {
	for _, obj := range b.Objects {
		if obj.Class == class && obj.Name == name {
			return obj, true
		}
	}
	return nil, false
}

// Add appends an object to the bundle, assigning it the next path ID.
func (b *Bundle) Add(class ClassID, name string, data []byte) *Object {
	var next int64 = 1
	for _, obj := range b.Objects {
		if obj.PathID >= next {
			next = obj.PathID + 1
		}
	}

	obj := &Object{PathID: next, Class: class, Name: name, Data: data}
	b.Objects = append(b.Objects, obj)

	return obj
}
