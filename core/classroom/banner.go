package classroom

import (
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ThemeColors is the whitelist of classroom theme colors.
var ThemeColors = []string{
	"#1967d2", // blue
	"#188038", // green
	"#e8710a", // orange
	"#d93025", // red
	"#8e24aa", // purple
	"#007b83", // teal
	"#5f6368", // grey
	"#3c4043", // dark
}

// bannerThemes maps a banner-name fragment to its theme color index.
var bannerThemes = map[string]int{
	"Honors":        7,
	"Breakfast":     3,
	"Graduation":    6,
	"Code":          7,
	"Bookclub":      1,
	"Reachout":      1,
	"LearnLanguage": 0,
	"BackToSchool":  4,
	"Read":          7,
}

// defaultBanners backs the catalog when no banner assets directory is
// available (tests, bare dev setups).
var defaultBanners = []string{
	"static/banner-images/General/BackToSchool.jpg",
	"static/banner-images/General/Bookclub.jpg",
	"static/banner-images/General/Breakfast.jpg",
	"static/banner-images/General/Code.jpg",
	"static/banner-images/General/Graduation.jpg",
	"static/banner-images/General/Honors.jpg",
	"static/banner-images/General/LearnLanguage.jpg",
	"static/banner-images/General/Read.jpg",
	"static/banner-images/General/Reachout.jpg",
}

// BannerCatalog lists the available banner images, grouped by category
// directory. New classrooms get a random banner from the General category.
type BannerCatalog struct {
	all     map[string]struct{}
	general []string
}

// LoadBannerCatalog scans dir ("<dir>/<Category>/<image>") once at startup.
// A missing or empty directory falls back to the built-in defaults.
func LoadBannerCatalog(dir string) *BannerCatalog {
	cat := &BannerCatalog{all: make(map[string]struct{})}

	categories, err := os.ReadDir(dir)
	if err == nil {
		for _, category := range categories {
			if !category.IsDir() {
				continue
			}
			images, err := os.ReadDir(filepath.Join(dir, category.Name()))
			if err != nil {
				continue
			}
			for _, image := range images {
				banner := path.Join("static/banner-images", category.Name(), image.Name())
				cat.all[banner] = struct{}{}
				if category.Name() == "General" {
					cat.general = append(cat.general, banner)
				}
			}
		}
	}

	if len(cat.general) == 0 {
		for _, banner := range defaultBanners {
			cat.all[banner] = struct{}{}
			cat.general = append(cat.general, banner)
		}
	}
	return cat
}

func (cat *BannerCatalog) Valid(banner string) bool {
	_, ok := cat.all[banner]
	return ok
}

func (cat *BannerCatalog) RandomGeneral() string {
	return cat.general[rand.Intn(len(cat.general))]
}

func themeForBanner(banner string) string {
	for fragment, idx := range bannerThemes {
		if strings.Contains(banner, fragment) {
			return ThemeColors[idx]
		}
	}
	return ThemeColors[rand.Intn(len(ThemeColors))]
}

func validTheme(color string) bool {
	for _, theme := range ThemeColors {
		if theme == color {
			return true
		}
	}
	return false
}
