package auth

import "encoding/base64"

// BasicHeader construye el valor para el header "Authorization: Basic <valor>"
// a partir de las credenciales del tenant de Evocon. Puro, sin estado;
// la validación de credenciales vacías ocurre al cargar la configuración.
func BasicHeader(tenant, secret string) string {
	credentials := tenant + ":" + secret
	return base64.StdEncoding.EncodeToString([]byte(credentials))
}
