package i18n

var ptBR = map[Code]string{
	CodeSessionNotFound:     "A sessão {{.session_id}} não foi encontrada.",
	CodeSessionInactive:     "Esta sessão já terminou.",
	CodeSessionFull:         "Esta sessão já tem dois jogadores.",
	CodeSelfJoin:            "Você não pode entrar na sua própria sessão.",
	CodeAwaitingOpponent:    "A sessão ainda está aguardando um oponente.",
	CodeNotYourTurn:         "Não é a sua vez.",
	CodeUnauthorizedRead:    "Somente participantes da sessão podem ver o tabuleiro.",
	CodeNotPoolAuthority:    "Somente a autoridade do fundo pode recarregar a reserva.",
	CodeIndexOutOfRange:     "O índice {{.index}} está fora do tabuleiro.",
	CodeDuplicateIndex:      "Escolha duas cartas diferentes.",
	CodeAlreadyMatched:      "Essa carta já foi combinada.",
	CodeEmptyPlayer:         "A identidade do jogador é obrigatória.",
	CodeAmountNegative:      "Os valores não podem ser negativos.",
	CodeInsufficientBalance: "O saldo é insuficiente para esta transferência.",
}
