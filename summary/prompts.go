package summary

import (
	"fmt"

	"github.com/kbukum/voxscribe/transcript"
)

// MaxTranscriptChars is the longest transcript sent to the model. Longer
// transcripts are cut and marked with "...".
const MaxTranscriptChars = 8000

// MeetingType selects a meeting summary template.
type MeetingType string

const (
	MeetingStandup   MeetingType = "standup"
	MeetingInterview MeetingType = "interview"
	MeetingGeneral   MeetingType = "general"
)

// ParseMeetingType maps unknown or empty names to MeetingGeneral.
func ParseMeetingType(s string) MeetingType {
	switch MeetingType(s) {
	case MeetingStandup, MeetingInterview:
		return MeetingType(s)
	}
	return MeetingGeneral
}

func truncate(text string) string {
	r := []rune(text)
	if len(r) <= MaxTranscriptChars {
		return text
	}
	return string(r[:MaxTranscriptChars]) + "..."
}

func summaryPrompt(text string, stats transcript.Statistics, language string) string {
	text = truncate(text)
	minutes := stats.TotalDuration / 60
	words := transcript.GroupThousands(stats.TotalWords)

	if language == "id" {
		return fmt.Sprintf(`Buatlah ringkasan SINGKAT dan PADAT dari transkrip berikut dalam bahasa Indonesia.

STATISTIK:
- Durasi: %.1f menit
- Pembicara: %d
- Total kata: %s

TRANSKRIP:
%s

INSTRUKSI:
- Maksimal 5-7 kalimat
- Fokus pada poin utama saja
- Langsung to the point
- Gunakan bullet points jika perlu
- Hindari penjelasan berlebihan

Format:
- Topik utama (1 kalimat)
- Poin-poin penting (3-5 bullet points)
- Kesimpulan (1 kalimat jika ada)`, minutes, stats.NumSpeakers, words, text)
	}

	return fmt.Sprintf(`Create a SHORT and CONCISE summary of this transcript in English.

STATISTICS:
- Duration: %.1f minutes
- Speakers: %d
- Total words: %s

TRANSCRIPT:
%s

INSTRUCTIONS:
- Maximum 5-7 sentences
- Focus on main points only
- Straight to the point
- Use bullet points if needed
- Avoid over-explanation

Format:
- Main topic (1 sentence)
- Key points (3-5 bullet points)
- Conclusion (1 sentence if applicable)`, minutes, stats.NumSpeakers, words, text)
}

var meetingTemplates = map[MeetingType]map[bool]string{
	MeetingStandup: {
		true: `Ringkas standup meeting ini SINGKAT:

%s

Format (maksimal 3-4 kalimat per pembicara):
- Yang dikerjakan kemarin
- Yang akan dikerjakan hari ini
- Blocker (jika ada)`,
		false: `Summarize this standup meeting BRIEFLY:

%s

Format (max 3-4 sentences per speaker):
- Done yesterday
- Will do today
- Blockers (if any)`,
	},
	MeetingInterview: {
		true: `Ringkas interview ini SINGKAT (maksimal 6 kalimat):

%s

Fokus pada:
- Pertanyaan utama
- Jawaban kunci
- Penilaian singkat`,
		false: `Summarize this interview BRIEFLY (max 6 sentences):

%s

Focus on:
- Main questions
- Key answers
- Brief assessment`,
	},
	MeetingGeneral: {
		true: `Ringkas meeting ini SINGKAT (maksimal 5-6 kalimat):

%s

Sertakan:
- Topik utama (1 kalimat)
- Keputusan penting (2-3 poin)
- Action items (jika ada)`,
		false: `Summarize this meeting BRIEFLY (max 5-6 sentences):

%s

Include:
- Main topic (1 sentence)
- Key decisions (2-3 points)
- Action items (if any)`,
	},
}

func meetingPrompt(text string, kind MeetingType, language string) string {
	tmpl, ok := meetingTemplates[kind]
	if !ok {
		tmpl = meetingTemplates[MeetingGeneral]
	}
	return fmt.Sprintf(tmpl[language == "id"], truncate(text))
}
