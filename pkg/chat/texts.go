package chat

// User-facing texts.
const (
	txtWelcome          = "Bienvenido"
	txtInstruction      = "Para comenzar la conversión, ingresa el monto:"
	txtAskName          = "Por favor, ingresa tu nombre para comenzar:"
	txtInvalidName      = "Por favor ingresa un nombre válido (solo letras)"
	txtInvalidAmount    = "Por favor ingresa un monto válido (mayor a 0)"
	txtAskFrom          = "Ingresa la moneda de origen (por ejemplo: USD, EUR, ARS)"
	txtAskTo            = "Ingresa la moneda de destino (por ejemplo: USD, EUR, ARS)"
	txtUnsupportedFmt   = "La moneda %s no está soportada. Las monedas disponibles son: %s"
	txtRateLineFmt      = "Tasa de cambio: 1 %s = %.4f %s"
	txtErrorFmt         = "Error: %s"
	txtTimeoutFmt       = "Timeout al obtener la tasa para %s"
	txtNotFoundFmt      = "Moneda %s no encontrada"
	txtAskCurrencyName  = "Por favor ingresa el nombre de la moneda:"
	txtAskCurrencyCode  = "Ingresa el código de la moneda (3 letras):"
	txtAskCurrencyRate  = "Ingresa la tasa de cambio respecto al USD:"
	txtInvalidCode      = "El código debe ser exactamente 3 letras"
	txtInvalidRate      = "Por favor ingresa una tasa válida (número mayor que 0)"
	txtCurrencyAddedFmt = "Moneda %s agregada exitosamente"
	txtCurrencyExists   = "Esta moneda ya existe"
	txtPurchaseOfferFmt = "¿Deseas realizar una compra de %s %s? Responde \"si\" para comprar."
	txtPurchaseDoneFmt  = "Compra realizada con éxito. Has comprado %s %s"
	txtPurchaseDeclined = "De acuerdo, no se realizó ninguna compra."
	txtHistoryTitle     = "Historial de conversiones:"
	txtHistoryEmpty     = "No hay conversiones en el historial."
	txtHistoryCleared   = "El historial ha sido borrado"
	txtCurrenciesFmt    = "Monedas disponibles: %s"
	txtCancelled        = "Operación cancelada."
)

// Text commands, matched case-insensitively on the trimmed input.
const (
	cmdAddCurrency  = "agregar moneda"
	cmdHistory      = "historial"
	cmdClearHistory = "borrar historial"
	cmdCurrencies   = "monedas"
	cmdCancel       = "cancelar"
	cmdClearChat    = "limpiar chat"
)

var (
	purchaseYes = map[string]bool{"si": true, "sí": true, "comprar": true}
	purchaseNo  = map[string]bool{"no": true}
)
