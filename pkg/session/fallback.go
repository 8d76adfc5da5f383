package session

import "github.com/teslashibe/alifbata/pkg/gemini"

func q(question, arabic, answer, prompt string, options ...string) gemini.QuizQuestion {
	return gemini.QuizQuestion{
		Question:      question,
		ArabicWord:    arabic,
		Options:       options,
		CorrectAnswer: answer,
		ImagePrompt:   prompt,
	}
}

// fallbackQuizzes is served when question generation fails for a reason other
// than a bad credential.
var fallbackQuizzes = map[string][]gemini.QuizQuestion{
	"Hewan Lucu": {
		q("Apa bahasa Arabnya Gajah?", "فِيْلٌ", "Fiilun", "cute elephant", "Fiilun", "Asadun", "Qiththun", "Jamalun"),
		q("Apa bahasa Arabnya Kucing?", "قِطٌّ", "Qiththun", "cute cat", "Kalbun", "Qiththun", "Asadun", "Fiilun"),
		q("Apa bahasa Arabnya Singa?", "أَسَدٌ", "Asadun", "friendly lion", "Jamalun", "Fiilun", "Asadun", "Kalbun"),
	},
	"Buah Segar": {
		q("Apa bahasa Arabnya Apel?", "تُفَّاحٌ", "Tuffaahun", "red apple", "Tuffaahun", "Mauzun", "'Inabun", "Burtuqaalun"),
		q("Apa bahasa Arabnya Pisang?", "مَوْزٌ", "Mauzun", "yellow banana", "'Inabun", "Mauzun", "Tuffaahun", "Rummaanun"),
		q("Apa bahasa Arabnya Anggur?", "عِنَبٌ", "'Inabun", "bunch of grapes", "Rummaanun", "Burtuqaalun", "Mauzun", "'Inabun"),
	},
	"Benda di Rumah": {
		q("Apa bahasa Arabnya Pintu?", "بَابٌ", "Baabun", "wooden door", "Baabun", "Kursiyyun", "Sariirun", "Qalamun"),
		q("Apa bahasa Arabnya Kursi?", "كُرْسِيٌّ", "Kursiyyun", "small chair", "Sariirun", "Kursiyyun", "Baabun", "Kitaabun"),
		q("Apa bahasa Arabnya Meja?", "طَاوِلَةٌ", "Thaawilatun", "wooden table", "Baabun", "Qalamun", "Thaawilatun", "Kursiyyun"),
	},
	"Anggota Keluarga": {
		q("Apa bahasa Arabnya Ayah?", "أَبٌ", "Abun", "happy father", "Abun", "Ummun", "Akhun", "Ukhtun"),
		q("Apa bahasa Arabnya Ibu?", "أُمٌّ", "Ummun", "smiling mother", "Akhun", "Ummun", "Abun", "Jaddun"),
		q("Apa bahasa Arabnya Saudara laki-laki?", "أَخٌ", "Akhun", "little brother", "Ukhtun", "Jaddun", "Akhun", "Abun"),
	},
	"Warna-warni": {
		q("Apa bahasa Arabnya Merah?", "أَحْمَرُ", "Ahmaru", "red balloon", "Ahmaru", "Azraqu", "Akhdharu", "Ashfaru"),
		q("Apa bahasa Arabnya Biru?", "أَزْرَقُ", "Azraqu", "blue sky", "Ashfaru", "Azraqu", "Ahmaru", "Abyadhu"),
		q("Apa bahasa Arabnya Hijau?", "أَخْضَرُ", "Akhdharu", "green leaf", "Abyadhu", "Ahmaru", "Akhdharu", "Azraqu"),
	},
	"Angka Arab": {
		q("Apa bahasa Arabnya Satu?", "وَاحِدٌ", "Waahidun", "number one", "Waahidun", "Itsnaani", "Tsalaatsatun", "Arba'atun"),
		q("Apa bahasa Arabnya Dua?", "اِثْنَانِ", "Itsnaani", "number two", "Tsalaatsatun", "Itsnaani", "Waahidun", "Khamsatun"),
		q("Apa bahasa Arabnya Tiga?", "ثَلَاثَةٌ", "Tsalaatsatun", "number three", "Arba'atun", "Waahidun", "Tsalaatsatun", "Itsnaani"),
	},
}

// Fallback returns a copy of the built-in questions for category. Unknown
// categories get the animal set.
func Fallback(category string) []gemini.QuizQuestion {
	src, ok := fallbackQuizzes[category]
	if !ok {
		src = fallbackQuizzes["Hewan Lucu"]
	}
	out := make([]gemini.QuizQuestion, len(src))
	for i, question := range src {
		question.Options = append([]string(nil), question.Options...)
		out[i] = question
	}
	return out
}
