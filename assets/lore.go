package assets

import "babilonia/internal/overlay"

// ButtonRestart is the id of the victory screen's new-game button.
const ButtonRestart = "restart"

// TutorialPages is shown when a play session starts. Both pages advance on
// any click; the last one closes the tutorial.
var TutorialPages = []overlay.Page{
	{
		Title:    "🏛️ BABILONIA 🏛️",
		Subtitle: "Il Segreto di Bobby",
		Body: `Nell'antica città di Babilonia, il Capo-città
Giacomo è stato misteriosamente rapito!

Tu sei Sophia, una giovane investigatrice
che deve scoprire la verità.

Esplora la città, parla con gli abitanti
e risolvi gli enigmi che nascondono.

Solo raccogliendo tutti gli indizi potrai
scoprire il nome del colpevole.`,
		Prompt:  "[ Clicca per continuare ]",
		Trigger: overlay.ClickAnywhere,
	},
	{
		Title: "🎮 CONTROLLI 🎮",
		Body: `↑ ↓ ← →   FRECCE   Muoviti nella mappa
▭         SPAZIO   Parla con i personaggi
⏎         INVIO    Invia la tua risposta
✕         ESC      Chiudi il dialogo`,
		Prompt:  "[ Clicca per iniziare ]",
		Trigger: overlay.ClickAnywhere,
	},
}

// VictoryPages is shown once the mystery is solved. The last page can only
// be left through its restart button.
var VictoryPages = []overlay.Page{
	{
		Title:    "👑 VITTORIA! 👑",
		Subtitle: "Il Mistero è Stato Risolto!",
		Body: `Complimenti, investigatrice Sophia!

Hai scoperto la verità su Bobby, il rapitore
che si nascondeva proprio sotto i tuoi occhi,
travestito da guida spirituale.

Grazie al tuo ingegno e alla tua perseveranza,
il Capo-città Giacomo può finalmente tornare
a guidare Babilonia.

La città ti è eternamente grata!`,
		Prompt:  "[ Clicca per continuare ]",
		Trigger: overlay.ClickAnywhere,
	},
	{
		Title: "🎮 GRAZIE PER AVER GIOCATO 🎮",
		Body: `BABILONIA: Il Segreto di Bobby

Un gioco narrativo con personaggi AI

━━━━━━━━━━━━━━━━━━━━━━

Vuoi rigiocare?
Premi il pulsante qui sotto per ricominciare`,
		Trigger: overlay.ButtonOnly,
		Buttons: []overlay.Button{
			{ID: ButtonRestart, Label: "🔄 NUOVA PARTITA", Hotkey: 'n'},
		},
	},
}
