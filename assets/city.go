package assets

// Character describes one inhabitant of Babilonia the player can talk to.
type Character struct {
	ID          string // stable id, also sent to the dialogue service
	Name        string
	SpawnMarker string // name of the world marker the character starts on
	Glyph       string
	Facing      string // initial facing: front, back, left or right

	RoamRadius            float64 // pixels
	MoveSpeed             float64 // pixels per second
	PauseChance           float64
	DirectionChangeChance float64

	Opening string   // first message sent when a conversation opens
	Lines   []string // offline dialogue
}

// Default wander tuning for characters that do not override it.
const (
	DefaultMoveSpeed             = 40.0
	DefaultPauseChance           = 0.2
	DefaultDirectionChangeChance = 0.3
)

// PlayerSpawnMarker names the marker the player starts on.
const PlayerSpawnMarker = "Spawn Point"

// Characters lists the inhabitants in registration order. When the player
// stands close to several at once, the one listed first answers.
var Characters = []Character{
	{
		ID:          "nicolo",
		Name:        "Nicolò",
		SpawnMarker: "Nicolo",
		Glyph:       "🧔",
		Facing:      "front",
		RoamRadius:  30,
		MoveSpeed:   10,
		Opening:     "Ciao Nicolò, sono Sophia. Mi aiuti a capire cosa è successo a Giacomo?",
		Lines: []string{
			"Benvenuta a Babilonia, Sophia. Io sono Nicolò, ma qui tutti mi chiamano Bobby.",
			"Il Capo-città Giacomo è sparito da tre notti. Nessuno sa dove sia.",
			"Parla con gli abitanti: ognuno custodisce una lettera del segreto.",
			"Quando avrai tutte le lettere, torna da me e dimmi il nome del colpevole.",
		},
	},
	{
		ID:          "akane",
		Name:        "Akane",
		SpawnMarker: "Akane",
		Glyph:       "💁",
		Facing:      "front",
		RoamRadius:  150,
		Opening:     "Buongiorno Akane. Cosa vendi al Mercato delle Ombre?",
		Lines: []string{
			"Hmph. Non credere che ti aiuti solo perché sei gentile.",
			"Al Mercato delle Ombre si compra e si vende tutto, anche i segreti.",
			"Va bene, va bene... la prima lettera è B. Non dirlo a nessuno!",
		},
	},
	{
		ID:          "hiroshi",
		Name:        "Hiroshi",
		SpawnMarker: "Hiroshi",
		Glyph:       "👴",
		Facing:      "front",
		RoamRadius:  200,
		Opening:     "Salve Hiroshi, i tuoi giardini sono splendidi.",
		Lines: []string{
			"Splendidi? Sono i Giardini Pensili più perfetti che Babilonia abbia mai visto.",
			"Solo chi sa apprezzare la bellezza merita un indizio.",
			"La lettera che cerchi è O. Ora lasciami potare in pace.",
		},
	},
	{
		ID:          "ryo",
		Name:        "Ryo",
		SpawnMarker: "Ryo",
		Glyph:       "🧘",
		Facing:      "front",
		RoamRadius:  80,
		MoveSpeed:   20,
		Opening:     "Maestro Ryo, posso disturbare la tua meditazione?",
		Lines: []string{
			"Il silenzio del tempio diroccato ascolta più di quanto parli.",
			"Chi guida gli altri non sempre cammina sulla via giusta.",
			"Ricorda questa lettera: B.",
		},
	},
	{
		ID:          "mei",
		Name:        "Mei",
		SpawnMarker: "Mei",
		Glyph:       "📚",
		Facing:      "front",
		RoamRadius:  120,
		Opening:     "Ciao Mei! Cosa si nasconde nella biblioteca?",
		Lines: []string{
			"Oh, ciao! Attenta agli scaffali, la biblioteca è un po' infestata.",
			"Ho trovato un vecchio registro con una pagina strappata...",
			"C'era scritta solo una lettera: B. Spero ti sia utile!",
		},
	},
	{
		ID:          "kaito",
		Name:        "Kaito",
		SpawnMarker: "Kaito",
		Glyph:       "⚓",
		Facing:      "front",
		RoamRadius:  180,
		Opening:     "Ehi marinaio, hai visto qualcosa di strano al porto?",
		Lines: []string{
			"Ho solcato ogni mare, ragazza, e ho visto cose che non crederesti.",
			"Tre notti fa una barca è partita senza luci dal Porto Dimenticato.",
			"L'ultima lettera è Y. Il resto lo devi capire da sola.",
		},
	},
	{
		ID:          "socrates",
		Name:        "Gio Marco Baglioni",
		SpawnMarker: "GioMarco",
		Glyph:       "💻",
		Facing:      "right",
		RoamRadius:  300,
		Opening:     "Ciao Gio Marco! Su cosa stai lavorando?",
		Lines: []string{
			"Ciao! Sto addestrando un modello linguistico, vuoi vedere il codice?",
			"Il segreto di un buon sistema RAG è scegliere bene i documenti.",
			"Non c'entro niente con il mistero, giuro. Buona fortuna!",
		},
	},
}

// CharacterByID returns the roster entry with the given id.
func CharacterByID(id string) (Character, bool) {
	for _, c := range Characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}

// Offline mystery: the guide reveals the culprit once every witness has
// finished talking.
const (
	Guide         = "nicolo"
	OfflineFinale = "Hai raccolto tutte le lettere: B, O, B, B, Y. Bobby... sono io. Ho rapito Giacomo per prendere il suo posto. Complimenti, Sophia."
)

// Witnesses are the characters whose scripts must be heard to the end
// before the guide confesses.
var Witnesses = []string{"akane", "hiroshi", "ryo", "mei", "kaito"}
