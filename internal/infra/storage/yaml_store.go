package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/7Lumine/whitelistbot/internal/domain"
)

var ErrLocked = errors.New("whitelist file is locked by another process")

const (
	keyPlayers      = "players"
	keyAccountID    = "account-id"
	keyRegisteredAt = "registered-at"
	keyAlternate    = "alternate"

	// nombres de archivos viejos, sólo lectura
	legacyAccountID = "discord-id"
	legacyAlternate = "bedrock"
)

// YAMLStore es el backend por defecto: un documento players → campos.
type YAMLStore struct {
	path string
	lock *flock.Flock
	log  zerolog.Logger
}

// NewYAMLStore toma el lock exclusivo de <path>.lock y lo mantiene hasta Close.
func NewYAMLStore(path string, logger zerolog.Logger) (*YAMLStore, error) {
	if path == "" {
		return nil, errors.New("yaml store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("yaml store: %w", err)
	}
	lk := flock.New(path + ".lock")
	ok, err := lk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("yaml store lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &YAMLStore{
		path: path,
		lock: lk,
		log:  logger.With().Str("component", "yaml_store").Str("file", path).Logger(),
	}, nil
}

func (s *YAMLStore) Path() string { return s.path }

// Load tolera campos malformados: se loguean y se usa el valor por defecto.
// Si el archivo no existe se crea vacío.
func (s *YAMLStore) Load(ctx context.Context) ([]domain.Entry, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info().Msg("whitelist file not found, creating an empty one")
		return nil, s.Save(ctx, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return s.decode(raw)
}

func (s *YAMLStore) decode(raw []byte) ([]domain.Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil // archivo vacío
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse %s: top level is not a mapping", s.path)
	}
	players := mappingValue(root, keyPlayers)
	if players == nil || players.Kind != yaml.MappingNode {
		return nil, nil
	}

	out := make([]domain.Entry, 0, len(players.Content)/2)
	for i := 0; i+1 < len(players.Content); i += 2 {
		name, body := players.Content[i].Value, players.Content[i+1]
		if name == "" {
			continue
		}
		e := domain.Entry{Identity: name}
		if body.Kind != yaml.MappingNode {
			s.log.Warn().Str("identity", name).Int("line", body.Line).Msg("player entry is not a mapping, loading bare identity")
			out = append(out, e)
			continue
		}
		e.AccountID = s.scalar(name, body, keyAccountID, legacyAccountID)
		e.RegisteredAt = s.scalar(name, body, keyRegisteredAt)
		if alt := s.scalar(name, body, keyAlternate, legacyAlternate); alt != "" {
			b, err := strconv.ParseBool(alt)
			if err != nil {
				s.log.Warn().Str("identity", name).Str("value", alt).Msg("invalid alternate flag, assuming primary")
			}
			if b {
				e.Namespace = domain.Alternate
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// scalar devuelve el primer campo escalar presente entre keys.
func (s *YAMLStore) scalar(name string, m *yaml.Node, keys ...string) string {
	for _, k := range keys {
		v := mappingValue(m, k)
		if v == nil {
			continue
		}
		if v.Kind != yaml.ScalarNode {
			s.log.Warn().Str("identity", name).Str("field", k).Int("line", v.Line).Msg("field is not a scalar, ignoring")
			continue
		}
		if v.Tag == "!!null" {
			return ""
		}
		return v.Value
	}
	return ""
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// Save escribe en un temporal del mismo directorio y lo renombra encima.
func (s *YAMLStore) Save(_ context.Context, entries []domain.Entry) error {
	raw, err := encodeYAML(entries)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // no-op tras el rename

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}

func encodeYAML(entries []domain.Entry) ([]byte, error) {
	players := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		players.Content = append(players.Content,
			str(e.Identity),
			&yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
				str(keyAccountID), quoted(e.AccountID),
				str(keyRegisteredAt), quoted(e.RegisteredAt),
				str(keyAlternate), {Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(e.Alternate())},
			}},
		)
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{str(keyPlayers), players},
	}}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode whitelist: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode whitelist: %w", err)
	}
	return buf.Bytes(), nil
}

func str(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// quoted fuerza comillas: sin ellas otros lectores YAML toman la fecha como
// timestamp y el id como número.
func quoted(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: yaml.DoubleQuotedStyle}
}

// Close libera el lock del archivo.
func (s *YAMLStore) Close() error {
	return s.lock.Unlock()
}
