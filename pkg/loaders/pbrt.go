package loaders

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
	"github.com/golang/glog"
)

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type       string               // Statement type (Camera, Material, Shape, etc.)
	Subtype    string               // Quoted subtype or name (perspective, diffuse, sphere, etc.)
	Args       []string             // Bare numeric arguments (LookAt, Translate)
	Parameters map[string]PBRTParam // Named parameters
	Line       int                  // Line the statement starts on
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, integer, string, etc.)
	Values []string // Parameter values as strings, quotes removed
}

// graphicsState is saved by AttributeBegin and restored by AttributeEnd
type graphicsState struct {
	material  material.Material
	translate core.Vec3
}

// PBRTParser builds a scene from the sphere-only subset of PBRT-v4 this
// renderer understands. PBRT is left-handed, so the parser mirrors every
// point through x = 0 to produce the same image in this renderer's
// right-handed frame.
type PBRTParser struct {
	name   string
	camera renderer.CameraConfig

	fov           float64
	lensRadius    float64
	focalDistance float64

	world          *geometry.HittableList
	namedMaterials map[string]material.Material
	state          graphicsState
	stateStack     []graphicsState
	inWorld        bool

	line           int
	statementLine  int
	statementLines []string
}

// NewPBRTParser creates a parser for a scene called name
func NewPBRTParser(name string) *PBRTParser {
	return &PBRTParser{
		name:           name,
		camera:         renderer.DefaultCameraConfig(),
		fov:            90,
		world:          geometry.NewHittableList(),
		namedMaterials: make(map[string]material.Material),
		state:          graphicsState{material: material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))},
	}
}

// ParsePBRT parses PBRT content from an io.Reader
func ParsePBRT(reader io.Reader, name string) (*scene.Scene, error) {
	parser := NewPBRTParser(name)

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		parser.line++
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("while reading PBRT input: %w", err)
	}

	if err := parser.finalize(); err != nil {
		return nil, err
	}
	return parser.Scene(), nil
}

// LoadPBRT loads and parses a PBRT scene file
func LoadPBRT(filename string) (*scene.Scene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("while opening scene file: %w", err)
	}
	defer file.Close()

	s, err := ParsePBRT(file, sceneName(filename))
	if err != nil {
		return nil, fmt.Errorf("while loading %s: %w", filename, err)
	}
	return s, nil
}

// Scene returns the scene parsed so far with the camera resolved
func (p *PBRTParser) Scene() *scene.Scene {
	camera := p.camera

	focus := p.focalDistance
	if focus <= 0 {
		focus = camera.LookFrom.Subtract(camera.LookAt).Length()
	}
	camera.FocusDistance = focus

	// fov spans the shorter image axis
	camera.VFov = p.fov
	if camera.AspectRatio < 1 {
		halfWidth := math.Tan(p.fov * math.Pi / 360)
		camera.VFov = 2 * math.Atan(halfWidth/camera.AspectRatio) * 180 / math.Pi
	}

	if p.lensRadius > 0 && focus > 0 {
		camera.DefocusAngle = 2 * math.Atan(p.lensRadius/focus) * 180 / math.Pi
	}

	return &scene.Scene{Name: p.name, World: p.world, Camera: camera}
}

// processLine processes a single line of PBRT input
func (p *PBRTParser) processLine(line string) error {
	line = strings.TrimSpace(line)

	// Skip empty lines and comments
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	switch line {
	case "WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd":
		if err := p.processAccumulatedStatement(); err != nil {
			return err
		}
		if err := p.processDirective(line); err != nil {
			return fmt.Errorf("line %d: %w", p.line, err)
		}
		return nil
	}

	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(); err != nil {
			return err
		}
		p.statementLine = p.line
		p.statementLines = []string{line}
		return nil
	}

	if len(p.statementLines) == 0 {
		return fmt.Errorf("line %d: %w: unexpected continuation line %q", p.line, ErrInvalidScene, line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

// finalize processes the last statement and checks that blocks are closed
func (p *PBRTParser) finalize() error {
	if err := p.processAccumulatedStatement(); err != nil {
		return err
	}
	if len(p.stateStack) > 0 {
		return fmt.Errorf("%w: %d AttributeBegin without AttributeEnd", ErrInvalidScene, len(p.stateStack))
	}
	return nil
}

// processAccumulatedStatement parses and applies any pending statement lines
func (p *PBRTParser) processAccumulatedStatement() error {
	if len(p.statementLines) == 0 {
		return nil
	}
	fullStatement := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	stmt, err := parseStatement(fullStatement)
	if err != nil {
		return fmt.Errorf("line %d: %w", p.statementLine, err)
	}
	stmt.Line = p.statementLine
	if err := p.routeStatement(stmt); err != nil {
		return fmt.Errorf("line %d: %w", stmt.Line, err)
	}
	return nil
}

func (p *PBRTParser) processDirective(directive string) error {
	switch directive {
	case "WorldBegin":
		if p.inWorld {
			return fmt.Errorf("%w: nested WorldBegin", ErrInvalidScene)
		}
		p.inWorld = true
	case "WorldEnd":
		p.inWorld = false
	case "AttributeBegin":
		p.stateStack = append(p.stateStack, p.state)
	case "AttributeEnd":
		if len(p.stateStack) == 0 {
			return fmt.Errorf("%w: AttributeEnd without AttributeBegin", ErrInvalidScene)
		}
		p.state = p.stateStack[len(p.stateStack)-1]
		p.stateStack = p.stateStack[:len(p.stateStack)-1]
	}
	return nil
}

// routeStatement applies a parsed statement to the camera, the graphics state
// or the world
func (p *PBRTParser) routeStatement(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "LookAt", "Camera", "Film", "Sampler", "Integrator":
		if p.inWorld {
			return fmt.Errorf("%w: %s must come before WorldBegin", ErrInvalidScene, stmt.Type)
		}
	case "Material", "MakeNamedMaterial", "NamedMaterial", "Shape":
		if !p.inWorld {
			return fmt.Errorf("%w: %s must come after WorldBegin", ErrInvalidScene, stmt.Type)
		}
	}

	switch stmt.Type {
	case "LookAt":
		return p.parseLookAt(stmt)
	case "Camera":
		return p.parseCamera(stmt)
	case "Film":
		return p.parseFilm(stmt)
	case "Sampler":
		spp, err := stmt.intParam("pixelsamples", 16)
		if err != nil {
			return err
		}
		p.camera.SamplesPerPixel = spp
	case "Integrator":
		depth, err := stmt.intParam("maxdepth", 5)
		if err != nil {
			return err
		}
		p.camera.MaxDepth = depth
	case "Translate":
		if !p.inWorld {
			return fmt.Errorf("%w: camera transforms other than LookAt", ErrUnsupported)
		}
		offset, err := stmt.vec3Args()
		if err != nil {
			return err
		}
		p.state.translate = p.state.translate.Add(offset)
	case "Material":
		m, err := buildPBRTMaterial(stmt.Subtype, stmt)
		if err != nil {
			return err
		}
		p.state.material = m
	case "MakeNamedMaterial":
		kind, err := stmt.stringParam("type", "")
		if err != nil {
			return err
		}
		m, err := buildPBRTMaterial(kind, stmt)
		if err != nil {
			return fmt.Errorf("while building material %q: %w", stmt.Subtype, err)
		}
		p.namedMaterials[stmt.Subtype] = m
	case "NamedMaterial":
		m, ok := p.namedMaterials[stmt.Subtype]
		if !ok {
			return fmt.Errorf("%w: no material named %q", ErrUnknownMaterial, stmt.Subtype)
		}
		p.state.material = m
	case "Shape":
		return p.parseShape(stmt)
	case "PixelFilter", "ColorSpace", "Option", "Accelerator":
		glog.V(1).Infof("Ignoring PBRT %s on line %d", stmt.Type, stmt.Line)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, stmt.Type)
	}
	return nil
}

// parseLookAt parses "LookAt eye target up" into the camera frame
func (p *PBRTParser) parseLookAt(stmt *PBRTStatement) error {
	values, err := parseFloats(stmt.Args)
	if err != nil {
		return fmt.Errorf("while parsing LookAt: %w", err)
	}
	if len(values) != 9 {
		return fmt.Errorf("%w: LookAt requires 9 values, got %d", ErrInvalidScene, len(values))
	}
	p.camera.LookFrom = mirror(core.NewVec3(values[0], values[1], values[2]))
	p.camera.LookAt = mirror(core.NewVec3(values[3], values[4], values[5]))
	p.camera.Up = mirror(core.NewVec3(values[6], values[7], values[8]))
	return nil
}

func (p *PBRTParser) parseCamera(stmt *PBRTStatement) error {
	if stmt.Subtype != "perspective" {
		return fmt.Errorf("%w: %q camera", ErrUnsupported, stmt.Subtype)
	}
	var err error
	if p.fov, err = stmt.floatParam("fov", 90); err != nil {
		return err
	}
	if p.lensRadius, err = stmt.floatParam("lensradius", 0); err != nil {
		return err
	}
	if p.focalDistance, err = stmt.floatParam("focaldistance", 0); err != nil {
		return err
	}
	return nil
}

func (p *PBRTParser) parseFilm(stmt *PBRTStatement) error {
	width, err := stmt.intParam("xresolution", 1280)
	if err != nil {
		return err
	}
	height, err := stmt.intParam("yresolution", 720)
	if err != nil {
		return err
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: film resolution %dx%d", ErrInvalidScene, width, height)
	}
	p.camera.ImageWidth = width
	p.camera.AspectRatio = float64(width) / float64(height)
	return nil
}

func (p *PBRTParser) parseShape(stmt *PBRTStatement) error {
	if stmt.Subtype != "sphere" {
		return fmt.Errorf("%w: %q shape", ErrUnsupported, stmt.Subtype)
	}
	radius, err := stmt.floatParam("radius", 1)
	if err != nil {
		return err
	}
	p.world.Add(geometry.NewSphere(mirror(p.state.translate), radius, p.state.material))
	return nil
}

// buildPBRTMaterial maps a PBRT material onto the closest supported material
func buildPBRTMaterial(kind string, stmt *PBRTStatement) (material.Material, error) {
	switch kind {
	case "diffuse":
		reflectance, err := stmt.rgbParam("reflectance", core.NewVec3(0.5, 0.5, 0.5))
		if err != nil {
			return material.Material{}, err
		}
		return material.NewLambertian(reflectance), nil
	case "conductor":
		if _, ok := stmt.Parameters["eta"]; ok {
			return material.Material{}, fmt.Errorf("%w: conductor eta, use reflectance", ErrUnsupported)
		}
		reflectance, err := stmt.rgbParam("reflectance", core.NewVec3(0.8, 0.8, 0.8))
		if err != nil {
			return material.Material{}, err
		}
		roughness, err := stmt.floatParam("roughness", 0)
		if err != nil {
			return material.Material{}, err
		}
		return material.NewMetal(reflectance, roughness), nil
	case "dielectric":
		eta, err := stmt.floatParam("eta", 1.5)
		if err != nil {
			return material.Material{}, err
		}
		if eta <= 0 {
			return material.Material{}, fmt.Errorf("%w: dielectric eta must be positive, got %g", ErrInvalidScene, eta)
		}
		return material.NewDielectric(eta), nil
	}
	return material.Material{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, kind)
}

// mirror converts between PBRT's left-handed frame and this renderer's
func mirror(v core.Vec3) core.Vec3 {
	return core.NewVec3(-v.X, v.Y, v.Z)
}

// tokenizePBRT tokenizes a PBRT line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, char := range line {
		switch {
		case char == '"' && !inBrackets:
			current.WriteRune(char)
			if inQuotes {
				flush()
			}
			inQuotes = !inQuotes
		case char == '[' && !inQuotes:
			flush()
			current.WriteRune(char)
			inBrackets = true
		case char == ']' && !inQuotes && inBrackets:
			current.WriteRune(char)
			flush()
			inBrackets = false
		case (char == ' ' || char == '\t') && !inQuotes && !inBrackets:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()

	return tokens
}

// parseStatement parses a single PBRT statement: Type ["subtype"] [args]
// ["type name" value]...
func parseStatement(line string) (*PBRTStatement, error) {
	parts := tokenizePBRT(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty statement", ErrInvalidScene)
	}

	stmt := &PBRTStatement{
		Type:       parts[0],
		Parameters: make(map[string]PBRTParam),
	}
	parts = parts[1:]

	if len(parts) > 0 && isQuoted(parts[0]) && len(strings.Fields(unquote(parts[0]))) == 1 {
		stmt.Subtype = unquote(parts[0])
		parts = parts[1:]
	}

	for i := 0; i < len(parts); i++ {
		if !isQuoted(parts[i]) {
			stmt.Args = append(stmt.Args, strings.Fields(strings.Trim(parts[i], "[]"))...)
			continue
		}

		paramDef := strings.Fields(unquote(parts[i]))
		if len(paramDef) != 2 {
			return nil, fmt.Errorf("%w: malformed parameter %s", ErrInvalidScene, parts[i])
		}
		if i+1 >= len(parts) {
			return nil, fmt.Errorf("%w: parameter %q has no value", ErrInvalidScene, paramDef[1])
		}
		i++

		var values []string
		for _, v := range strings.Fields(strings.Trim(parts[i], "[]")) {
			values = append(values, unquote(v))
		}
		stmt.Parameters[paramDef[1]] = PBRTParam{Type: paramDef[0], Values: values}
	}

	return stmt, nil
}

func (stmt *PBRTStatement) floatParam(name string, def float64) (float64, error) {
	param, ok := stmt.Parameters[name]
	if !ok {
		return def, nil
	}
	if param.Type != "float" || len(param.Values) != 1 {
		return 0, fmt.Errorf("%w: %q must be a single float", ErrInvalidScene, name)
	}
	v, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, fmt.Errorf("while parsing %q: %w", name, err)
	}
	return v, nil
}

func (stmt *PBRTStatement) intParam(name string, def int) (int, error) {
	param, ok := stmt.Parameters[name]
	if !ok {
		return def, nil
	}
	if param.Type != "integer" || len(param.Values) != 1 {
		return 0, fmt.Errorf("%w: %q must be a single integer", ErrInvalidScene, name)
	}
	v, err := strconv.Atoi(param.Values[0])
	if err != nil {
		return 0, fmt.Errorf("while parsing %q: %w", name, err)
	}
	return v, nil
}

func (stmt *PBRTStatement) stringParam(name, def string) (string, error) {
	param, ok := stmt.Parameters[name]
	if !ok {
		return def, nil
	}
	if param.Type != "string" || len(param.Values) != 1 {
		return "", fmt.Errorf("%w: %q must be a single string", ErrInvalidScene, name)
	}
	return param.Values[0], nil
}

func (stmt *PBRTStatement) rgbParam(name string, def core.Vec3) (core.Vec3, error) {
	param, ok := stmt.Parameters[name]
	if !ok {
		return def, nil
	}
	if param.Type != "rgb" {
		return core.Vec3{}, fmt.Errorf("%w: %s %q, only rgb colors", ErrUnsupported, param.Type, name)
	}
	values, err := parseFloats(param.Values)
	if err != nil {
		return core.Vec3{}, fmt.Errorf("while parsing %q: %w", name, err)
	}
	if len(values) != 3 {
		return core.Vec3{}, fmt.Errorf("%w: %q needs 3 values, got %d", ErrInvalidScene, name, len(values))
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

func (stmt *PBRTStatement) vec3Args() (core.Vec3, error) {
	values, err := parseFloats(stmt.Args)
	if err != nil {
		return core.Vec3{}, fmt.Errorf("while parsing %s: %w", stmt.Type, err)
	}
	if len(values) != 3 {
		return core.Vec3{}, fmt.Errorf("%w: %s requires 3 values, got %d", ErrInvalidScene, stmt.Type, len(values))
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

func parseFloats(values []string) ([]float64, error) {
	floats := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		floats[i] = f
	}
	return floats, nil
}

func isQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, "\"") && strings.HasSuffix(token, "\"")
}

func unquote(token string) string {
	return strings.Trim(token, "\"")
}

// isStatementStart reports whether a line begins with a directive name.
// Parameter continuation lines start with a quote, a bracket or a number.
func isStatementStart(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsUpper(r)
}
