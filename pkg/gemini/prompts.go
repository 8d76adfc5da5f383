package gemini

import "fmt"

// DefaultLesson is returned when the model produces no lesson text.
const DefaultLesson = "Semoga kita selalu disayang Allah."

func questionsPrompt(category string, n int) string {
	return fmt.Sprintf(`Buat %d soal kuis pilihan ganda untuk anak-anak tentang kosakata bahasa Arab kategori: "%s".
Setiap soal harus memiliki tepat %d pilihan jawaban dan correctAnswer harus salah satu dari pilihan tersebut.
Format respons harus JSON array.
Contoh: { "question": "Apa bahasa Arabnya Gajah?", "arabicWord": "فِيْلٌ", "options": ["Fiilun", "Asadun", "Qittun", "Jamalun"], "correctAnswer": "Fiilun", "imagePrompt": "cute elephant cartoon" }`,
		n, category, OptionsPerQuestion)
}

func imagePrompt(subject string) string {
	return fmt.Sprintf("A very simple, cute, flat 2D vector cartoon illustration of %s for kids, bright friendly colors, white background, high quality.", subject)
}

func lessonPrompt(surahName string) string {
	return fmt.Sprintf("Tuliskan pesan moral/pelajaran singkat dari Surah %s untuk anak-anak dalam 2 kalimat saja. Gunakan bahasa yang ceria.", surahName)
}

// questionsSchema is the response schema for structured quiz output.
func questionsSchema() *schema {
	str := &schema{Type: "STRING"}
	return &schema{
		Type: "ARRAY",
		Items: &schema{
			Type: "OBJECT",
			Properties: map[string]*schema{
				"question":      str,
				"arabicWord":    str,
				"options":       {Type: "ARRAY", Items: str},
				"correctAnswer": str,
				"imagePrompt":   str,
			},
			Required: []string{"question", "options", "correctAnswer", "arabicWord", "imagePrompt"},
		},
	}
}
