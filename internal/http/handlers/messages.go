package handlers

const (
	codeBadRequest         = "bad_request"
	codeMissingModel       = "missing_model"
	codeMissingTheme       = "missing_theme"
	codeGenerationInFlight = "generation_in_flight"
	codeNotFound           = "not_found"
	codeUnknownModel       = "unknown_model"
	codeUnknownTheme       = "unknown_theme"
	codeUnknownField       = "unknown_field"
	codeLogoRequired       = "logo_required"
	codeLogoTooLarge       = "logo_too_large"
	codeNoImage            = "no_image"
	codeNoLogo             = "no_logo"
	codeStatsUnavailable   = "stats_unavailable"
	codeInternal           = "internal"
)

var messages = map[string]map[string]string{
	"en": {
		codeBadRequest:         "The request payload is invalid.",
		codeMissingModel:       "Please select a trailer model.",
		codeMissingTheme:       "Please choose a color theme.",
		codeGenerationInFlight: "A preview is already being generated.",
		codeNotFound:           "The requested resource was not found.",
		codeUnknownModel:       "Unknown trailer model.",
		codeUnknownTheme:       "Unknown color theme.",
		codeUnknownField:       "Unknown branding field.",
		codeLogoRequired:       "Please attach a logo file.",
		codeLogoTooLarge:       "The logo file is too large.",
		codeNoImage:            "No generated preview is available yet.",
		codeNoLogo:             "No logo has been uploaded.",
		codeStatsUnavailable:   "Generation statistics are not available.",
		codeInternal:           "Something went wrong. Please try again.",
	},
	"id": {
		codeBadRequest:         "Data permintaan tidak valid.",
		codeMissingModel:       "Silakan pilih model trailer.",
		codeMissingTheme:       "Silakan pilih tema warna.",
		codeGenerationInFlight: "Pratinjau sedang dibuat.",
		codeNotFound:           "Data yang diminta tidak ditemukan.",
		codeUnknownModel:       "Model trailer tidak dikenal.",
		codeUnknownTheme:       "Tema warna tidak dikenal.",
		codeUnknownField:       "Kolom branding tidak dikenal.",
		codeLogoRequired:       "Silakan lampirkan file logo.",
		codeLogoTooLarge:       "Ukuran file logo terlalu besar.",
		codeNoImage:            "Belum ada pratinjau yang dihasilkan.",
		codeNoLogo:             "Belum ada logo yang diunggah.",
		codeStatsUnavailable:   "Statistik generasi tidak tersedia.",
		codeInternal:           "Terjadi kesalahan. Silakan coba lagi.",
	},
}

func message(locale, code string) string {
	if m, ok := messages[locale]; ok {
		if msg, ok := m[code]; ok {
			return msg
		}
	}
	if msg, ok := messages["en"][code]; ok {
		return msg
	}
	return code
}
