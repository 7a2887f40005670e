package extract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The mapper prompts are Latvian, matching the master lists and the source
// documents. The contract is JSON-only: exact allow-list names as keys,
// literal quotations as evidence.

const systemPromptTemplate = `Tu esi stingrs kartētājs slēgtā pasaulē (tikai no dotā saraksta).
Mērķis: identificēt TEKSTĀ skaidrus pieminējumus mainīgajiem no dotā saraksta, atļaujot viennozīmīgus sinonīmus/saīsinājumus/virspusējas variācijas, bet IZVADĒ atgriezt tikai precīzus saraksta nosaukumus.

Noteikumi:

SLĒGTĀ PASAULE: Atzīmē tikai tos mainīgos, kas IR dotajā sarakstā. Nekādus jaunus nosaukumus.

SADERĪGUMS:
• Pieņem locījumu, rakstzīmju (diakritiku), atstarpju/defišu un lielo/mazo burtu variācijas.
• Pieņem nozarē tipiskus sinonīmus/saīsinājumus, ja tie VIENNOZĪMĪGI atbilst tieši vienam saraksta nosaukumam. Ja ir vairākas iespējamas atbilsmes — IZLAID.

NEGĀCIJU FILTRS: ja formulējums ir noliegums/izslēgšana ("nav", "bez", "nepieejams", "–"), NEATZĪMĒ to kā pozitīvu pieminējumu.

EVIDENCE OBLIGĀTI:
• Katram "mentioned_vars" vienumam jābūt atbilstošai NE-TUKŠAI "evidence" vērtībai.
• "evidence" ir īss burtisks citāts no TEKSTA (nepārfrāzēts), līdz {EVIDENCE_MAX_CHARS} rakstzīmēm.
• Ja burtisku citātu atrast nevar, šo mainīgo NEIEKĻAUJ.

IZVADES LĪGUMS (tikai JSON, nekā cita):
{"mentioned_vars": ["<precīzs nosaukums>", "..."], "evidence": {"<precīzs nosaukums>": "<burtisks citāts>", "...": "..."}}

Ja nav skaidru, viennozīmīgu pieminējumu: atgriez {"mentioned_vars": [], "evidence": {}}.
`

const userPromptTemplate = `Uzdevums: No DOTĀ saraksta atlasīt tos mainīgos, kas ŠAJĀ TEKSTA FRAGMENTĀ ir skaidri un tieši pieminēti.
IZVADĒ lieto TIKAI precīzus saraksta nosaukumus. Negatīvas formas neatzīmējam kā pozitīvas.
KATRAM iekļautajam mainīgajam obligāti pievieno NE-TUKŠU burtisku "evidence" citātu no teksta (līdz {EVIDENCE_MAX_CHARS}).

Atgriez tikai JSON pēc līguma.

Saraksts (precīzi nosaukumi):
{ALLOW_ARRAY}

Teksts analizēšanai (nepārfrāzē, citē burtiski):
<<<
{TEXT}
>>>
`

const repairSystemPrompt = `Tu esi JSON formāta remontētājs.
ATGRIEZ tikai derīgu JSON, kas precīzi atbilst šim līgumam:
{"mentioned_vars": ["<exact name>", "..."], "evidence": {"<same exact name>": "<literal snippet(s)>", "...": "..."}}
NEMAINI saturisko nozīmi; NEPIEVIENO jaunus mainīgos; nepārfrāzē "evidence".
Tava loma ir tikai salabot formātu/atslēgas/tipus, lai JSON būtu derīgs. Nekādu citu tekstu.
`

// buildSystemPrompt injects the evidence length cap.
func buildSystemPrompt(evidenceMaxChars int) string {
	return strings.ReplaceAll(systemPromptTemplate, "{EVIDENCE_MAX_CHARS}", strconv.Itoa(evidenceMaxChars))
}

// buildUserPrompt injects the allow-list (as a JSON array) and the chunk text.
func buildUserPrompt(allowNames []string, chunkText string, evidenceMaxChars int) (string, error) {
	arr, err := json.Marshal(allowNames)
	if err != nil {
		return "", err
	}
	s := strings.ReplaceAll(userPromptTemplate, "{EVIDENCE_MAX_CHARS}", strconv.Itoa(evidenceMaxChars))
	s = strings.ReplaceAll(s, "{ALLOW_ARRAY}", string(arr))
	s = strings.ReplaceAll(s, "{TEXT}", chunkText)
	return s, nil
}
