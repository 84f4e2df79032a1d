package clock

import "time"

// SystemClock devolve o instante atual em UTC; a conversão para o fuso do jogo fica com domain.Calendar.
type SystemClock struct{}

func NewSystemClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Agora() time.Time {
	return time.Now().UTC()
}

// Fixed é um relógio parado, usado por jobctl para reexecutar um dia passado e pelos testes.
type Fixed struct {
	Now time.Time
}

func (f Fixed) Agora() time.Time {
	return f.Now
}
