package types

type OrderSide = string

var (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

type OrderKind = string

var (
	KindMarket       OrderKind = "market"
	KindLimit        OrderKind = "limit"
	KindStop         OrderKind = "stop"
	KindStopLimit    OrderKind = "stop_limit"
	KindPegged       OrderKind = "pegged"
	KindTrailingStop OrderKind = "trailing_stop"
)

type TimeInForce = string

var (
	TifGTC TimeInForce = "gtc"
	TifGTD TimeInForce = "gtd"
	TifDay TimeInForce = "day"
	TifIOC TimeInForce = "ioc"
	TifFOK TimeInForce = "fok"
)

type StrategyKind = string

var (
	StrategyBestExecution      StrategyKind = "best_execution"
	StrategyProportionalSplit  StrategyKind = "proportional_split"
	StrategySequentialFallback StrategyKind = "sequential_fallback"
)

type PayloadAction = string

var (
	ActionSubmit PayloadAction = "submit"
	ActionCancel PayloadAction = "cancel"
	ActionReport PayloadAction = "report"
)
