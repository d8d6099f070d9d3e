// Package application decide, sem conhecer HTTP: Service conta requests na
// janela fixa de cada chave e devolve a Decision; ConcurrencyService aplica o
// prazo de aquisição de vaga.
package application
