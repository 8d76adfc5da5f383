// Package quran is a small client for the equran.id v2 REST API.
//
// Only the read endpoints used for Juz 30 memorization are covered: the surah
// list and a single surah with its verses.
package quran

import "strings"

const (
	// FirstSurah and LastSurah bound valid surah numbers.
	FirstSurah = 1
	LastSurah  = 114

	// Juz30Start is the first surah of Juz 30 (An-Naba).
	Juz30Start = 78

	// DefaultReciter is the audio key of the default reciter.
	DefaultReciter = "01"
)

// Surah is a list entry.
type Surah struct {
	Number      int    `json:"nomor"`
	Name        string `json:"nama"`
	LatinName   string `json:"namaLatin"`
	VerseCount  int    `json:"jumlahAyat"`
	Revelation  string `json:"tempatTurun"`
	Meaning     string `json:"arti"`
	Description string `json:"deskripsi,omitempty"`
}

// Meccan reports whether the surah was revealed in Mecca.
func (s Surah) Meccan() bool {
	return strings.EqualFold(s.Revelation, "mekah")
}

// Verse is a single ayah.
type Verse struct {
	Number     int               `json:"nomorAyat"`
	Arabic     string            `json:"teksArab"`
	Latin      string            `json:"teksLatin"`
	Indonesian string            `json:"teksIndonesia"`
	Audio      map[string]string `json:"audio"`
}

// AudioURL returns the recitation URL for the default reciter, or "".
func (v Verse) AudioURL() string {
	return v.Audio[DefaultReciter]
}

// SurahDetail is a surah with its verses.
type SurahDetail struct {
	Surah
	Verses []Verse `json:"ayat"`
}

// ValidNumber reports whether n names a surah.
func ValidNumber(n int) bool {
	return n >= FirstSurah && n <= LastSurah
}
