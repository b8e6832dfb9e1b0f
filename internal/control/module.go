package control

import (
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/condition"
	"github.com/vk/actorgrid/internal/registry"
)

// Module registers the control actors and the built-in conditions.
type Module struct{}

func (Module) Register(r *registry.Registry) {
	r.RegisterActor("Flow", func() actor.Actor { return NewFlow() })
	r.RegisterActor("Sequence", func() actor.Actor { return NewSequence() })
	r.RegisterActor("SubProcess", func() actor.Actor { return NewSubProcess() })
	r.RegisterActor("SequenceSource", func() actor.Actor { return NewSequenceSource() })
	r.RegisterActor("CallableActors", func() actor.Actor { return NewCallableActors() })
	r.RegisterActor("CallableSink", func() actor.Actor { return NewCallableSink("") })
	r.RegisterActor("CallableSource", func() actor.Actor { return NewCallableSource("") })
	r.RegisterActor("CallableTransformer", func() actor.Actor { return NewCallableTransformer("") })
	r.RegisterActor("Trigger", func() actor.Actor { return NewTrigger() })
	r.RegisterActor("LocalScopeTrigger", func() actor.Actor { return NewLocalScopeTrigger() })
	r.RegisterActor("Tee", func() actor.Actor { return NewTee() })
	r.RegisterActor("IfThenElse", func() actor.Actor { return NewIfThenElse() })
	r.RegisterActor("Switch", func() actor.Actor { return NewSwitch() })
	r.RegisterActor("Branch", func() actor.Actor { return NewBranch() })
	r.RegisterActor("TryCatch", func() actor.Actor { return NewTryCatch() })
	r.RegisterActor("ContainerValuePicker", func() actor.Actor { return NewContainerValuePicker() })
	r.RegisterActor("Stop", func() actor.Actor { return NewStop() })

	r.RegisterCondition("True", func() condition.Condition { return condition.True{} })
	r.RegisterCondition("False", func() condition.Condition { return condition.False{} })
	r.RegisterCondition("Not", func() condition.Condition { return &condition.Not{} })
	r.RegisterCondition("And", func() condition.Condition { return &condition.And{} })
	r.RegisterCondition("Or", func() condition.Condition { return &condition.Or{} })
	r.RegisterCondition("Expression", func() condition.Condition { return &condition.Expression{} })
	r.RegisterCondition("HasStorageValue", func() condition.Condition { return &condition.HasStorageValue{} })
	r.RegisterCondition("VariableEquals", func() condition.Condition { return &condition.VariableEquals{} })
}
