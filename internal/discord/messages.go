package discord

// Friendly message constants for Discord responses
const (
	MsgNotReady = "⏳ **Aún no está lista.**"

	MsgPlantationNotFound = "❓ **Plantación no encontrada.**\n¿Seguro que el número es correcto?"
	MsgAlreadyCompleted   = "🌾 **Esa plantación ya está completada.**"
	MsgForbidden          = "🔒 **Solo los administradores pueden hacer eso.**"
	MsgInvalidAction      = "❌ **Esa acción no aplica a este tipo de plantación.**"

	MsgNoPlantations = "No hay plantaciones activas. Crea una con `/plantacion`."
	MsgEmptyLog      = "El registro está vacío."
	MsgLogCleared    = "🧹 Registro limpiado."

	MsgGenericError = "❌ Algo salió mal."
)

// Embed footer text.
const FooterPlantaciones = "Plantaciones"
