// Package ply decodes PLY point and polygon clouds into vertex buffers.
// ASCII, binary little endian and binary big endian bodies are supported.
// Vertex colors and normals are picked up when present and polygon faces are
// fan-triangulated.
package ply

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
)

// ErrNotPLY is returned when the stream does not start with the PLY magic
var ErrNotPLY = errors.New("not a PLY file")

// Formats
const (
	FormatASCII        = "ascii"
	FormatBinaryLE     = "binary_little_endian"
	FormatBinaryBE     = "binary_big_endian"
	maxHeaderLineCount = 10000

	// maxListLength bounds a single list property such as the corners of a face
	maxListLength = 1 << 16
	// maxPrealloc bounds the capacity reserved from a header count before any
	// data has been read
	maxPrealloc = 1 << 20
)

var typeSizes = map[string]int{
	"char": 1, "int8": 1,
	"uchar": 1, "uint8": 1,
	"short": 2, "int16": 2,
	"ushort": 2, "uint16": 2,
	"int": 4, "int32": 4,
	"uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

// Property is a property definition in the PLY header
type Property struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
}

// Element is an element definition with its declared count
type Element struct {
	Name       string
	Count      int
	Properties []Property
}

func (e Element) index(name string) int {
	for i, p := range e.Properties {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Header is the parsed PLY header
type Header struct {
	Format   string
	Version  string
	Comments []string
	Elements []Element
}

// Element returns the element with the given name
func (h *Header) Element(name string) (Element, bool) {
	for _, e := range h.Elements {
		if e.Name == name {
			return e, true
		}
	}
	return Element{}, false
}

// Load decodes the PLY file at filename
func Load(filename string) (*mesh.VertexBuffer, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// Decode reads a PLY stream
func Decode(r io.Reader) (*mesh.VertexBuffer, error) {
	br := bufio.NewReader(r)

	header, err := ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values valueReader
	switch header.Format {
	case FormatASCII:
		values = newASCIIReader(br)
	case FormatBinaryLE:
		values = &binaryReader{r: br, order: binary.LittleEndian}
	case FormatBinaryBE:
		values = &binaryReader{r: br, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}

	buf, err := readBody(header, values)
	if err != nil {
		return nil, fmt.Errorf("failed to read PLY data: %w", err)
	}
	return buf, nil
}

// ReadHeader parses everything up to and including end_header
func ReadHeader(br *bufio.Reader) (*Header, error) {
	header := &Header{}

	magic, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, ErrNotPLY
	}

	for lineNo := 2; lineNo < maxHeaderLineCount; lineNo++ {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("line %d: unexpected end of header: %w", lineNo, err)
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.Format == "" {
				return nil, errors.New("missing format line")
			}
			return header, nil

		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("line %d: invalid format line", lineNo)
			}
			header.Format = parts[1]
			header.Version = parts[2]

		case "comment", "obj_info":
			header.Comments = append(header.Comments, strings.TrimSpace(strings.TrimPrefix(line, parts[0])))

		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("line %d: invalid element line", lineNo)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("line %d: invalid element count: %s", lineNo, parts[2])
			}
			header.Elements = append(header.Elements, Element{Name: parts[1], Count: count})

		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("line %d: property before element", lineNo)
			}
			prop, err := parseProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			last := &header.Elements[len(header.Elements)-1]
			last.Properties = append(last.Properties, prop)
		}
	}

	return nil, errors.New("header too long")
}

func parseProperty(parts []string) (Property, error) {
	if len(parts) >= 1 && parts[0] == "list" {
		if len(parts) < 4 {
			return Property{}, errors.New("invalid list property")
		}
		if _, ok := typeSizes[parts[1]]; !ok {
			return Property{}, fmt.Errorf("unknown type %q", parts[1])
		}
		if _, ok := typeSizes[parts[2]]; !ok {
			return Property{}, fmt.Errorf("unknown type %q", parts[2])
		}
		return Property{Name: parts[3], Type: parts[2], IsList: true, ListType: parts[1]}, nil
	}

	if len(parts) < 2 {
		return Property{}, errors.New("invalid property")
	}
	if _, ok := typeSizes[parts[0]]; !ok {
		return Property{}, fmt.Errorf("unknown type %q", parts[0])
	}
	return Property{Name: parts[1], Type: parts[0]}, nil
}

// vertexLayout caches where the interesting vertex properties live
type vertexLayout struct {
	position [3]int
	normal   [3]int
	color    [4]int
	hasNorm  bool
	hasColor bool
}

func newVertexLayout(e Element) (vertexLayout, error) {
	l := vertexLayout{
		position: [3]int{e.index("x"), e.index("y"), e.index("z")},
		normal:   [3]int{e.index("nx"), e.index("ny"), e.index("nz")},
		color:    [4]int{firstIndex(e, "red", "r"), firstIndex(e, "green", "g"), firstIndex(e, "blue", "b"), firstIndex(e, "alpha", "a")},
	}
	for _, idx := range l.position {
		if idx < 0 {
			return l, errors.New("vertex element needs x, y and z properties")
		}
	}
	l.hasNorm = l.normal[0] >= 0 && l.normal[1] >= 0 && l.normal[2] >= 0
	l.hasColor = l.color[0] >= 0 && l.color[1] >= 0 && l.color[2] >= 0
	return l, nil
}

func firstIndex(e Element, names ...string) int {
	for _, n := range names {
		if idx := e.index(n); idx >= 0 {
			return idx
		}
	}
	return -1
}

func readBody(header *Header, values valueReader) (*mesh.VertexBuffer, error) {
	buf := &mesh.VertexBuffer{}

	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			if err := readVertices(element, values, buf); err != nil {
				return nil, err
			}
		case "face":
			if err := readFaces(element, values, buf); err != nil {
				return nil, err
			}
		default:
			if err := skipElement(element, values); err != nil {
				return nil, err
			}
		}
	}

	return buf, nil
}

func readVertices(element Element, values valueReader, buf *mesh.VertexBuffer) error {
	layout, err := newVertexLayout(element)
	if err != nil {
		return err
	}

	capacity := min(element.Count, maxPrealloc)
	buf.Positions = make([]geometry.Vector3, 0, capacity)
	if layout.hasNorm {
		buf.Normals = make([]geometry.Vector3, 0, capacity)
	}
	if layout.hasColor {
		buf.Colors = make([]mesh.Color, 0, capacity)
	}

	row := make([]float64, len(element.Properties))
	for i := 0; i < element.Count; i++ {
		for j, prop := range element.Properties {
			if prop.IsList {
				if err := skipList(prop, values); err != nil {
					return fmt.Errorf("vertex %d: %w", i, err)
				}
				continue
			}
			v, err := values.scalar(prop.Type)
			if err != nil {
				return fmt.Errorf("vertex %d, property %s: %w", i, prop.Name, err)
			}
			row[j] = v
		}

		buf.Positions = append(buf.Positions, geometry.NewVector3(row[layout.position[0]], row[layout.position[1]], row[layout.position[2]]))
		if layout.hasNorm {
			buf.Normals = append(buf.Normals, geometry.NewVector3(row[layout.normal[0]], row[layout.normal[1]], row[layout.normal[2]]))
		}
		if layout.hasColor {
			c := mesh.Color{
				R: colorValue(element, layout.color[0], row),
				G: colorValue(element, layout.color[1], row),
				B: colorValue(element, layout.color[2], row),
				A: 1,
			}
			if layout.color[3] >= 0 {
				c.A = colorValue(element, layout.color[3], row)
			}
			buf.Colors = append(buf.Colors, c)
		}
	}
	return nil
}

// colorValue maps integer channels onto [0,1] and keeps float channels
func colorValue(e Element, idx int, row []float64) float64 {
	switch e.Properties[idx].Type {
	case "uchar", "uint8", "char", "int8":
		return row[idx] / 255
	case "ushort", "uint16", "short", "int16":
		return row[idx] / 65535
	default:
		return row[idx]
	}
}

func readFaces(element Element, values valueReader, buf *mesh.VertexBuffer) error {
	listIdx := firstIndex(element, "vertex_indices", "vertex_index")
	if listIdx < 0 || !element.Properties[listIdx].IsList {
		return skipElement(element, values)
	}

	for i := 0; i < element.Count; i++ {
		for j, prop := range element.Properties {
			if j != listIdx {
				if prop.IsList {
					if err := skipList(prop, values); err != nil {
						return fmt.Errorf("face %d: %w", i, err)
					}
				} else if _, err := values.scalar(prop.Type); err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				continue
			}

			count, err := listLength(prop, values)
			if err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
			corners := make([]int, count)
			for k := range corners {
				v, err := values.scalar(prop.Type)
				if err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				corners[k] = int(v)
			}

			// Fan triangulation; faces with fewer than three corners are dropped
			for k := 1; k+1 < len(corners); k++ {
				buf.Indices = append(buf.Indices, [3]int{corners[0], corners[k], corners[k+1]})
			}
		}
	}
	return nil
}

func skipElement(element Element, values valueReader) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if prop.IsList {
				if err := skipList(prop, values); err != nil {
					return fmt.Errorf("%s %d: %w", element.Name, i, err)
				}
				continue
			}
			if _, err := values.scalar(prop.Type); err != nil {
				return fmt.Errorf("%s %d: %w", element.Name, i, err)
			}
		}
	}
	return nil
}

func skipList(prop Property, values valueReader) error {
	count, err := listLength(prop, values)
	if err != nil {
		return err
	}
	for k := 0; k < count; k++ {
		if _, err := values.scalar(prop.Type); err != nil {
			return err
		}
	}
	return nil
}

// ErrListLength is returned for a list count that is negative, fractional or
// larger than maxListLength
var ErrListLength = errors.New("invalid list length")

func listLength(prop Property, values valueReader) (int, error) {
	count, err := values.scalar(prop.ListType)
	if err != nil {
		return 0, err
	}
	if count < 0 || count > maxListLength || count != math.Trunc(count) {
		return 0, fmt.Errorf("%w %v for %s", ErrListLength, count, prop.Name)
	}
	return int(count), nil
}

// valueReader yields the next scalar of the body as float64
type valueReader interface {
	scalar(typ string) (float64, error)
}

type asciiReader struct {
	scanner *bufio.Scanner
}

func newASCIIReader(r io.Reader) *asciiReader {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	return &asciiReader{scanner: scanner}
}

func (a *asciiReader) scalar(typ string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	v, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", typ, a.scanner.Text())
	}
	return v, nil
}

type binaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryReader) scalar(typ string) (float64, error) {
	size, ok := typeSizes[typ]
	if !ok {
		return 0, fmt.Errorf("unknown type %q", typ)
	}
	data := b.buf[:size]
	if _, err := io.ReadFull(b.r, data); err != nil {
		return 0, err
	}

	switch typ {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default:
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}
