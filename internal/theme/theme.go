// Package theme generates storefront color and font combinations.
package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/bossnova23/shopify-tracker/internal/apperr"
	"github.com/bossnova23/shopify-tracker/internal/metrics"
	"github.com/bossnova23/shopify-tracker/internal/models"
)

const DefaultListLimit = 10

var Styles = []string{"modern", "elegant", "playful", "minimal"}

var Fonts = map[string][]string{
	"modern":  {"Roboto", "Open Sans", "Lato"},
	"elegant": {"Playfair Display", "Cormorant Garamond", "Libre Baskerville"},
	"playful": {"Quicksand", "Comic Neue", "Fredoka One"},
	"minimal": {"Montserrat", "Work Sans", "Source Sans Pro"},
}

// Palette derives three colors from one base hue in [0,1), spreading them
// a third of the color wheel apart.
func Palette(hue float64) models.Colors {
	return models.Colors{
		Primary:   hsvHex(hue, 0.6, 0.9),
		Secondary: hsvHex(math.Mod(hue+0.33, 1), 0.5, 0.8),
		Accent:    hsvHex(math.Mod(hue+0.66, 1), 0.7, 1.0),
	}
}

// hsvHex truncates each channel to a byte; Color.Hex rounds, which shifts
// stored palettes by one unit.
func hsvHex(h, s, v float64) string {
	c := colorful.Hsv(h*360, s, v)
	return fmt.Sprintf("#%02x%02x%02x", uint8(c.R*255), uint8(c.G*255), uint8(c.B*255))
}

// Store persists generated themes.
type Store interface {
	CreateTheme(ctx context.Context, t *models.Theme) error
	GetRecentThemes(ctx context.Context, limit int) ([]models.Theme, error)
}

type Service struct {
	store Store
	now   func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService returns a theme service. A nil rng seeds a fresh source and a
// nil clock uses time.Now.
func NewService(store Store, rng *rand.Rand, now func() time.Time) *Service {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, rng: rng, now: now}
}

// Build picks a style (random when empty), a palette and two distinct fonts.
// It does not persist anything.
func (s *Service) Build(style string) (*models.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if style == "" {
		style = Styles[s.rng.IntN(len(Styles))]
	}
	fonts, ok := Fonts[style]
	if !ok {
		return nil, apperr.New(apperr.KindInvalidInput,
			fmt.Sprintf("unknown style %q, expected one of %s", style, strings.Join(Styles, ", ")))
	}

	colors := Palette(s.rng.Float64())

	// second font is drawn from the remaining ones so the pair never repeats
	i := s.rng.IntN(len(fonts))
	j := s.rng.IntN(len(fonts) - 1)
	if j >= i {
		j++
	}

	now := s.now()
	t := &models.Theme{
		Name:           fmt.Sprintf("%s Theme %s", capitalize(style), now.Format("200601021504")),
		Style:          style,
		PrimaryColor:   colors.Primary,
		SecondaryColor: colors.Secondary,
		AccentColor:    colors.Accent,
		FontPrimary:    fonts[i],
		FontSecondary:  fonts[j],
		CreatedAt:      now.UTC(),
	}

	preview, err := json.Marshal(struct {
		Colors models.Colors `json:"colors"`
		Fonts  models.Fonts  `json:"fonts"`
		Style  string        `json:"style"`
	}{t.Colors(), t.Fonts(), style})
	if err != nil {
		return nil, err
	}
	t.PreviewData = string(preview)

	return t, nil
}

// Generate builds a theme and stores it.
func (s *Service) Generate(ctx context.Context, style string) (*models.Theme, error) {
	t, err := s.Build(style)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateTheme(ctx, t); err != nil {
		slog.ErrorContext(ctx, "failed to save theme", "style", t.Style, "error", err)
		return nil, apperr.Wrap(apperr.KindPersistenceFailed, "failed to save theme", err)
	}

	metrics.ThemesGenerated.WithLabelValues(t.Style).Inc()
	slog.InfoContext(ctx, "theme generated", "id", t.ID, "name", t.Name)
	return t, nil
}

// Recent lists the newest themes; a non-positive limit means DefaultListLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.Theme, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	themes, err := s.store.GetRecentThemes(ctx, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistenceFailed, "failed to load themes", err)
	}
	return themes, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
