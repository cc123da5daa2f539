package domain

// Action действие над бронированием, запускающее переход статуса
type Action string

const (
	ActionConfirm  Action = "confirm"  // репетитор подтверждает заявку
	ActionCancel   Action = "cancel"   // студент, репетитор или sweep отменяют
	ActionStart    Action = "start"    // репетитор начинает занятие
	ActionComplete Action = "complete" // верификация кода, ручное или автозавершение
	ActionDispute  Action = "dispute"  // открыть спор
	ActionRestore  Action = "restore"  // административное восстановление
)

// Actor инициатор перехода
type Actor string

const (
	ActorStudent Actor = "student"
	ActorTutor   Actor = "tutor"
	ActorSystem  Actor = "system" // lifecycle sweep и внутренние пути завершения
	ActorAdmin   Actor = "admin"
)

// Transition разрешённое ребро state machine бронирования
type Transition struct {
	From   BookingStatus
	Action Action
	To     BookingStatus
}

// transitionsTable полный список разрешённых переходов
// Любая пара (статус, действие) вне таблицы отклоняется без изменения бронирования
var transitionsTable = []Transition{
	{From: StatusPending, Action: ActionConfirm, To: StatusConfirmed},
	{From: StatusPending, Action: ActionCancel, To: StatusCancelled},
	{From: StatusPending, Action: ActionDispute, To: StatusDisputed},

	{From: StatusConfirmed, Action: ActionStart, To: StatusInProgress},
	{From: StatusConfirmed, Action: ActionCancel, To: StatusCancelled},
	{From: StatusConfirmed, Action: ActionDispute, To: StatusDisputed},

	{From: StatusInProgress, Action: ActionComplete, To: StatusCompleted},
	{From: StatusInProgress, Action: ActionCancel, To: StatusCancelled},
	{From: StatusInProgress, Action: ActionDispute, To: StatusDisputed},
}

// TransitionFor возвращает разрешённый переход для пары (статус, действие)
func TransitionFor(from BookingStatus, action Action) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Action == action {
			return tr, true
		}
	}
	return Transition{}, false
}

// Transitions возвращает копию таблицы переходов
func Transitions() []Transition {
	out := make([]Transition, len(transitionsTable))
	copy(out, transitionsTable)
	return out
}

// actorAllowed таблица допустимых инициаторов для каждого действия
var actorAllowed = map[Action]map[Actor]bool{
	ActionConfirm:  {ActorTutor: true},
	ActionCancel:   {ActorStudent: true, ActorTutor: true, ActorSystem: true},
	ActionStart:    {ActorTutor: true},
	ActionComplete: {ActorSystem: true},
	ActionDispute:  {ActorStudent: true, ActorTutor: true, ActorAdmin: true},
	ActionRestore:  {ActorAdmin: true},
}

// ActorAllowed проверяет, что инициатор вправе выполнить действие
func ActorAllowed(action Action, actor Actor) bool {
	allowed, ok := actorAllowed[action]
	if !ok {
		return false
	}
	return allowed[actor]
}

// ValidStatus проверяет, что строка является известным статусом
func ValidStatus(s BookingStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusDisputed:
		return true
	}
	return false
}

// ValidAction проверяет, что строка является известным действием
func ValidAction(a Action) bool {
	switch a {
	case ActionConfirm, ActionCancel, ActionStart,
		ActionComplete, ActionDispute, ActionRestore:
		return true
	}
	return false
}
